package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/firewatch/firewatch/pkg/types"
)

const (
	ServiceName       = "firewatch.v1.SweepService"
	PublishFullMethod = "/" + ServiceName + "/Publish"
)

// PublishResponse acknowledges a published sweep.
type PublishResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// SweepServiceServer is implemented by the server-side receiver.
type SweepServiceServer interface {
	Publish(context.Context, *types.Sweep) (*PublishResponse, error)
}

// UnimplementedSweepServiceServer can be embedded to satisfy
// SweepServiceServer for forward compatibility.
type UnimplementedSweepServiceServer struct{}

func (UnimplementedSweepServiceServer) Publish(context.Context, *types.Sweep) (*PublishResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Publish not implemented")
}

// RegisterSweepServiceServer registers srv on s.
func RegisterSweepServiceServer(s grpc.ServiceRegistrar, srv SweepServiceServer) {
	s.RegisterService(&SweepServiceDesc, srv)
}

// SweepServiceDesc describes the sweep service for grpc.Server.
var SweepServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SweepServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Publish", Handler: publishHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "firewatch/v1/sweep",
}

func publishHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(types.Sweep)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SweepServiceServer).Publish(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PublishFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SweepServiceServer).Publish(ctx, req.(*types.Sweep))
	}
	return interceptor(ctx, in, info, handler)
}

// SweepServiceClient publishes sweeps.
type SweepServiceClient interface {
	Publish(ctx context.Context, in *types.Sweep, opts ...grpc.CallOption) (*PublishResponse, error)
}

type sweepServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSweepServiceClient returns a client bound to cc. Every call uses the
// JSON codec.
func NewSweepServiceClient(cc grpc.ClientConnInterface) SweepServiceClient {
	return &sweepServiceClient{cc: cc}
}

func (c *sweepServiceClient) Publish(ctx context.Context, in *types.Sweep, opts ...grpc.CallOption) (*PublishResponse, error) {
	out := new(PublishResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, PublishFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
