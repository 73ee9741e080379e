package binding

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region errors

func invalidArg(name, reason string) error {
	return &th.ArgumentError{Name: name, Reason: reason, Err: th.ErrInvalidArgument}
}

// #endregion errors

// #region parser

// kwargs parses keyword arguments against a fixed signature.
type kwargs struct {
	m map[string]any
}

// checkKeywords rejects any key not in allowed and any missing required key.
func checkKeywords(m map[string]any, required, optional []string) error {
	allowed := make(map[string]bool, len(required)+len(optional))
	for _, k := range required {
		allowed[k] = true
	}
	for _, k := range optional {
		allowed[k] = true
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !allowed[k] {
			return invalidArg(k, "is an invalid keyword argument")
		}
	}

	for i, k := range required {
		if _, ok := m[k]; !ok {
			return &th.ArgumentError{
				Name:   k,
				Reason: fmt.Sprintf("required argument (pos %d) not found", i+1),
				Err:    th.ErrInvalidArgument,
			}
		}
	}
	return nil
}

func (kw kwargs) float(name string) (float64, error) {
	return toFloat(name, kw.m[name])
}

func (kw kwargs) floatOr(name string, fallback float64) (float64, error) {
	v, ok := kw.m[name]
	if !ok || v == nil {
		return fallback, nil
	}
	return toFloat(name, v)
}

func (kw kwargs) intOr(name string, fallback int) (int, error) {
	v, ok := kw.m[name]
	if !ok || v == nil {
		return fallback, nil
	}
	f, err := toFloat(name, v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, invalidArg(name, "must be an integer")
	}
	return int(f), nil
}

// floatList reads a list of numbers. Any non-list value is rejected.
func (kw kwargs) floatList(name string) ([]float64, error) {
	switch v := kw.m[name].(type) {
	case []float64:
		return v, nil
	case []any:
		out := make([]float64, len(v))
		for i, e := range v {
			f, err := toFloat(name, e)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, invalidArg(name, "must be a list")
	}
}

func toFloat(name string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, invalidArg(name, "must be a real number")
		}
		return f, nil
	case string:
		if f, ok := parseNonFinite(n); ok {
			return f, nil
		}
		return 0, invalidArg(name, "must be a real number")
	default:
		return 0, invalidArg(name, "must be a real number")
	}
}

// #endregion parser
