package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region types

// DipoleRequest holds the dipole_spectrum arguments. Zero NPoints or Current
// leaves the server default in place.
type DipoleRequest struct {
	BField        float64
	BeamEnergyGeV float64
	Angle         float64
	EnergyRange   th.EnergyRange
	NPoints       int
	Current       float64
}

func (r DipoleRequest) kwargs() map[string]any {
	kw := map[string]any{
		"bfield":          r.BField,
		"beam_energy_GeV": r.BeamEnergyGeV,
		"angle":           r.Angle,
		"energy_range_eV": []any{r.EnergyRange.Low, r.EnergyRange.High},
	}
	if r.NPoints != 0 {
		kw["npoints"] = float64(r.NPoints)
	}
	if r.Current != 0 {
		kw["current"] = r.Current
	}
	return kw
}

// SpectrumResult is a decoded dipole_spectrum response. RunID is set when
// the server persisted the run.
type SpectrumResult struct {
	th.Spectrum
	RunID string
}

// #endregion types

// #region client-struct

// Client calls a remote oscars.th.TH service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor

// NewClient connects to a th-server at addr without transport security.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection.
// Used for testing without a real gRPC connection.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region calls

// UndulatorK asks the server for the undulator deflection parameter.
func (c *Client) UndulatorK(ctx context.Context, bField, period float64) (float64, error) {
	res, err := c.invoke(ctx, MethodUndulatorK, map[string]any{"bfield": bField, "period": period})
	if err != nil {
		return 0, err
	}
	return binding.DecodeK(res)
}

// DipoleSpectrum asks the server for a bending-magnet spectrum.
func (c *Client) DipoleSpectrum(ctx context.Context, req DipoleRequest) (SpectrumResult, error) {
	res, err := c.invoke(ctx, MethodDipoleSpectrum, req.kwargs())
	if err != nil {
		return SpectrumResult{}, err
	}
	s, err := binding.DecodeSpectrum(res)
	if err != nil {
		return SpectrumResult{}, err
	}
	runID, _ := res["run_id"].(string)
	return SpectrumResult{Spectrum: s, RunID: runID}, nil
}

// Call invokes any method of the binding table by name.
func (c *Client) Call(ctx context.Context, method string, kwargs map[string]any) (map[string]any, error) {
	in := map[string]any{"method": method}
	if kwargs != nil {
		in["kwargs"] = kwargs
	}
	return c.invoke(ctx, MethodCall, in)
}

func (c *Client) invoke(ctx context.Context, method string, in map[string]any) (map[string]any, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out); err != nil {
		return nil, fmt.Errorf("%s rpc: %w", method, fromStatus(err))
	}
	return out.AsMap(), nil
}

// #endregion calls
