package binding

import "math"

// #region non-finite

// Spellings used for non-finite numbers in JSON, which has no literal for them.
const (
	PosInf = "+Inf"
	NegInf = "-Inf"
	NaN    = "NaN"
)

// JSONFloat returns f unchanged when finite, and its string spelling otherwise.
func JSONFloat(f float64) any {
	switch {
	case math.IsInf(f, 1):
		return PosInf
	case math.IsInf(f, -1):
		return NegInf
	case math.IsNaN(f):
		return NaN
	}
	return f
}

// EncodeNonFinite returns a copy of v safe for encoding/json. Non-finite
// float64 values inside maps and lists are replaced by their string
// spelling. Other values are returned as is.
func EncodeNonFinite(v any) any {
	switch x := v.(type) {
	case float64:
		return JSONFloat(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = EncodeNonFinite(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = EncodeNonFinite(e)
		}
		return out
	case []float64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = JSONFloat(e)
		}
		return out
	default:
		return v
	}
}

// Float reads a number argument or result value, accepting the non-finite
// spellings written by JSONFloat.
func Float(name string, v any) (float64, error) {
	return toFloat(name, v)
}

func parseNonFinite(s string) (float64, bool) {
	switch s {
	case PosInf, "Inf":
		return math.Inf(1), true
	case NegInf:
		return math.Inf(-1), true
	case NaN:
		return math.NaN(), true
	}
	return 0, false
}

// #endregion non-finite
