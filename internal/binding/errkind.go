package binding

import (
	"errors"

	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// Error kinds recorded in the call log and named in replay fixtures.
const (
	KindInvalidArgument = "invalid_argument"
	KindLength          = "length"
	KindUnknownMethod   = "unknown_method"
	KindOther           = "other"
)

// ErrorKind classifies err by the sentinel it wraps. It returns "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, th.ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, th.ErrLength):
		return KindLength
	case errors.Is(err, ErrUnknownMethod):
		return KindUnknownMethod
	default:
		return KindOther
	}
}
