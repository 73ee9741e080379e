// Package rpc serves the binding method table over gRPC and provides a
// client for it. Requests and responses are google.protobuf.Struct values
// holding the same keyword arguments and results as binding.Call, so the
// service needs no generated code.
package rpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region service-desc

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "oscars.th.TH"

// RPC method names.
const (
	MethodUndulatorK     = "UndulatorK"
	MethodDipoleSpectrum = "DipoleSpectrum"
	MethodCall           = "Call"
)

// THServer is the server API for the oscars.th.TH service.
type THServer interface {
	UndulatorK(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DipoleSpectrum(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Call(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the oscars.th.TH service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*THServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodUndulatorK,
			Handler: unaryHandler(MethodUndulatorK, func(s THServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.UndulatorK(ctx, in)
			}),
		},
		{
			MethodName: MethodDipoleSpectrum,
			Handler: unaryHandler(MethodDipoleSpectrum, func(s THServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.DipoleSpectrum(ctx, in)
			}),
		},
		{
			MethodName: MethodCall,
			Handler: unaryHandler(MethodCall, func(s THServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.Call(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "oscars/th.proto",
}

type unaryFunc func(THServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryFunc) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(THServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(THServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Register attaches srv to a gRPC registrar.
func Register(r grpc.ServiceRegistrar, srv THServer) {
	r.RegisterService(&ServiceDesc, srv)
}

// #endregion service-desc

// #region server

// Recorder persists calls served by the endpoint. store.Store implements it.
type Recorder interface {
	RecordCall(method string, kwargs, result map[string]any, callErr error) (runID string, err error)
}

// Server implements THServer on top of a th facade.
type Server struct {
	th       *th.TH
	recorder Recorder
	logger   *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRecorder records every call. A nil recorder disables recording.
func WithRecorder(r Recorder) ServerOption {
	return func(s *Server) { s.recorder = r }
}

// WithServerLogger sets the logger for per-call diagnostics.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer builds a Server around t.
func NewServer(t *th.TH, opts ...ServerOption) *Server {
	s := &Server{th: t, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// UndulatorK serves binding method undulator_K.
func (s *Server) UndulatorK(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.invoke(ctx, binding.UndulatorK, in.AsMap())
}

// DipoleSpectrum serves binding method dipole_spectrum. When a recorder is
// set the result carries the stored run_id.
func (s *Server) DipoleSpectrum(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.invoke(ctx, binding.DipoleSpectrum, in.AsMap())
}

// Call dispatches {"method": name, "kwargs": {...}} through the method table.
func (s *Server) Call(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	m := in.AsMap()
	method, ok := m["method"].(string)
	if !ok || method == "" {
		return nil, status.Error(codes.InvalidArgument, "'method' must be a non-empty string")
	}
	var kw map[string]any
	if raw, present := m["kwargs"]; present && raw != nil {
		if kw, ok = raw.(map[string]any); !ok {
			return nil, status.Error(codes.InvalidArgument, "'kwargs' must be an object")
		}
	}
	return s.invoke(ctx, method, kw)
}

func (s *Server) invoke(ctx context.Context, method string, kw map[string]any) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	res, callErr := binding.Call(s.th, method, kw)
	if s.recorder != nil {
		runID, err := s.recorder.RecordCall(method, kw, res, callErr)
		if err != nil {
			s.logger.Warn("record call failed", "method", method, "err", err)
		}
		if runID != "" && res != nil {
			res["run_id"] = runID
		}
	}
	if callErr != nil {
		s.logger.Info("call rejected", "method", method, "err", callErr)
		return nil, toStatus(callErr)
	}

	out, err := structpb.NewStruct(res)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode %s result: %v", method, err)
	}
	s.logger.Debug("call served", "method", method)
	return out, nil
}

// #endregion server
