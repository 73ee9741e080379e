package rpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region remote-error

// RemoteError is a server-side failure seen by the client. Its message is the
// server's error text and it unwraps to the matching th or binding sentinel,
// so errors.Is behaves as it would for a local call.
type RemoteError struct {
	Code    codes.Code
	Message string
	Err     error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.Err }

// #endregion remote-error

// #region mapping

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	code := codes.Internal
	switch {
	case errors.Is(err, th.ErrInvalidArgument):
		code = codes.InvalidArgument
	case errors.Is(err, th.ErrLength):
		code = codes.OutOfRange
	case errors.Is(err, binding.ErrUnknownMethod):
		code = codes.Unimplemented
	}
	return status.Error(code, err.Error())
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.InvalidArgument:
		sentinel = th.ErrInvalidArgument
	case codes.OutOfRange:
		sentinel = th.ErrLength
	case codes.Unimplemented:
		sentinel = binding.ErrUnknownMethod
	default:
		return err
	}
	return &RemoteError{Code: st.Code(), Message: st.Message(), Err: sentinel}
}

// #endregion mapping
