package server

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ribbons.v1.RibbonService"

// RibbonServiceServer is the server API for RibbonService.
type RibbonServiceServer interface {
	Summarize(context.Context, *SummarizeRequest) (*SummarizeResponse, error)
	Apply(context.Context, *ApplyRequest) (*ApplyResponse, error)
	Export(context.Context, *ExportRequest) (*ExportResponse, error)
	ListStock(context.Context, *ListStockRequest) (*ListStockResponse, error)
	SetStock(context.Context, *SetStockRequest) (*SetStockResponse, error)
	ListDocuments(context.Context, *ListDocumentsRequest) (*ListDocumentsResponse, error)
}

// RibbonServiceDesc describes RibbonService for grpc.Server.RegisterService.
var RibbonServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RibbonServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Summarize", RibbonServiceServer.Summarize),
		unary("Apply", RibbonServiceServer.Apply),
		unary("Export", RibbonServiceServer.Export),
		unary("ListStock", RibbonServiceServer.ListStock),
		unary("SetStock", RibbonServiceServer.SetStock),
		unary("ListDocuments", RibbonServiceServer.ListDocuments),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterRibbonServiceServer(s grpc.ServiceRegistrar, srv RibbonServiceServer) {
	s.RegisterService(&RibbonServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(RibbonServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RibbonServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(RibbonServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// RibbonServiceClient calls RibbonService over a connection, always with the
// JSON content subtype.
type RibbonServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRibbonServiceClient(cc grpc.ClientConnInterface) *RibbonServiceClient {
	return &RibbonServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RibbonServiceClient) Summarize(ctx context.Context, in *SummarizeRequest, opts ...grpc.CallOption) (*SummarizeResponse, error) {
	return invoke[SummarizeResponse](ctx, c.cc, "Summarize", in, opts)
}

func (c *RibbonServiceClient) Apply(ctx context.Context, in *ApplyRequest, opts ...grpc.CallOption) (*ApplyResponse, error) {
	return invoke[ApplyResponse](ctx, c.cc, "Apply", in, opts)
}

func (c *RibbonServiceClient) Export(ctx context.Context, in *ExportRequest, opts ...grpc.CallOption) (*ExportResponse, error) {
	return invoke[ExportResponse](ctx, c.cc, "Export", in, opts)
}

func (c *RibbonServiceClient) ListStock(ctx context.Context, in *ListStockRequest, opts ...grpc.CallOption) (*ListStockResponse, error) {
	return invoke[ListStockResponse](ctx, c.cc, "ListStock", in, opts)
}

func (c *RibbonServiceClient) SetStock(ctx context.Context, in *SetStockRequest, opts ...grpc.CallOption) (*SetStockResponse, error) {
	return invoke[SetStockResponse](ctx, c.cc, "SetStock", in, opts)
}

func (c *RibbonServiceClient) ListDocuments(ctx context.Context, in *ListDocumentsRequest, opts ...grpc.CallOption) (*ListDocumentsResponse, error) {
	return invoke[ListDocumentsResponse](ctx, c.cc, "ListDocuments", in, opts)
}
