package shlyv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ReviewService_Start_FullMethodName       = "/shly.v1.ReviewService/Start"
	ReviewService_Skip_FullMethodName        = "/shly.v1.ReviewService/Skip"
	ReviewService_Verdict_FullMethodName     = "/shly.v1.ReviewService/Verdict"
	ReviewService_Status_FullMethodName      = "/shly.v1.ReviewService/Status"
	ReviewService_Accepted_FullMethodName    = "/shly.v1.ReviewService/Accepted"
	ReviewService_Current_FullMethodName     = "/shly.v1.ReviewService/Current"
	ReviewService_ListItems_FullMethodName   = "/shly.v1.ReviewService/ListItems"
	ReviewService_ImportItems_FullMethodName = "/shly.v1.ReviewService/ImportItems"
	ReviewService_Watch_FullMethodName       = "/shly.v1.ReviewService/Watch"
)

// ReviewServiceClient is the client API for ReviewService.
type ReviewServiceClient interface {
	Start(ctx context.Context, in *StartRequest, opts ...grpc.CallOption) (*StartResponse, error)
	Skip(ctx context.Context, in *SkipRequest, opts ...grpc.CallOption) (*SkipResponse, error)
	Verdict(ctx context.Context, in *VerdictRequest, opts ...grpc.CallOption) (*VerdictResponse, error)
	Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	Accepted(ctx context.Context, in *AcceptedRequest, opts ...grpc.CallOption) (*AcceptedResponse, error)
	Current(ctx context.Context, in *CurrentRequest, opts ...grpc.CallOption) (*CurrentResponse, error)
	ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error)
	ImportItems(ctx context.Context, in *ImportItemsRequest, opts ...grpc.CallOption) (*ImportItemsResponse, error)
	Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (ReviewService_WatchClient, error)
}

type reviewServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReviewServiceClient(cc grpc.ClientConnInterface) ReviewServiceClient {
	return &reviewServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reviewServiceClient) Start(ctx context.Context, in *StartRequest, opts ...grpc.CallOption) (*StartResponse, error) {
	return invoke[StartResponse](ctx, c.cc, ReviewService_Start_FullMethodName, in, opts)
}

func (c *reviewServiceClient) Skip(ctx context.Context, in *SkipRequest, opts ...grpc.CallOption) (*SkipResponse, error) {
	return invoke[SkipResponse](ctx, c.cc, ReviewService_Skip_FullMethodName, in, opts)
}

func (c *reviewServiceClient) Verdict(ctx context.Context, in *VerdictRequest, opts ...grpc.CallOption) (*VerdictResponse, error) {
	return invoke[VerdictResponse](ctx, c.cc, ReviewService_Verdict_FullMethodName, in, opts)
}

func (c *reviewServiceClient) Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, ReviewService_Status_FullMethodName, in, opts)
}

func (c *reviewServiceClient) Accepted(ctx context.Context, in *AcceptedRequest, opts ...grpc.CallOption) (*AcceptedResponse, error) {
	return invoke[AcceptedResponse](ctx, c.cc, ReviewService_Accepted_FullMethodName, in, opts)
}

func (c *reviewServiceClient) Current(ctx context.Context, in *CurrentRequest, opts ...grpc.CallOption) (*CurrentResponse, error) {
	return invoke[CurrentResponse](ctx, c.cc, ReviewService_Current_FullMethodName, in, opts)
}

func (c *reviewServiceClient) ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error) {
	return invoke[ListItemsResponse](ctx, c.cc, ReviewService_ListItems_FullMethodName, in, opts)
}

func (c *reviewServiceClient) ImportItems(ctx context.Context, in *ImportItemsRequest, opts ...grpc.CallOption) (*ImportItemsResponse, error) {
	return invoke[ImportItemsResponse](ctx, c.cc, ReviewService_ImportItems_FullMethodName, in, opts)
}

func (c *reviewServiceClient) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (ReviewService_WatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &ReviewService_ServiceDesc.Streams[0], ReviewService_Watch_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &reviewServiceWatchClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type ReviewService_WatchClient interface {
	Recv() (*Event, error)
	grpc.ClientStream
}

type reviewServiceWatchClient struct {
	grpc.ClientStream
}

func (x *reviewServiceWatchClient) Recv() (*Event, error) {
	m := new(Event)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReviewServiceServer is the server API for ReviewService.
type ReviewServiceServer interface {
	Start(context.Context, *StartRequest) (*StartResponse, error)
	Skip(context.Context, *SkipRequest) (*SkipResponse, error)
	Verdict(context.Context, *VerdictRequest) (*VerdictResponse, error)
	Status(context.Context, *StatusRequest) (*StatusResponse, error)
	Accepted(context.Context, *AcceptedRequest) (*AcceptedResponse, error)
	Current(context.Context, *CurrentRequest) (*CurrentResponse, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error)
	ImportItems(context.Context, *ImportItemsRequest) (*ImportItemsResponse, error)
	Watch(*WatchRequest, ReviewService_WatchServer) error
}

// UnimplementedReviewServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedReviewServiceServer struct{}

func (UnimplementedReviewServiceServer) Start(context.Context, *StartRequest) (*StartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Start not implemented")
}
func (UnimplementedReviewServiceServer) Skip(context.Context, *SkipRequest) (*SkipResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Skip not implemented")
}
func (UnimplementedReviewServiceServer) Verdict(context.Context, *VerdictRequest) (*VerdictResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Verdict not implemented")
}
func (UnimplementedReviewServiceServer) Status(context.Context, *StatusRequest) (*StatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Status not implemented")
}
func (UnimplementedReviewServiceServer) Accepted(context.Context, *AcceptedRequest) (*AcceptedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Accepted not implemented")
}
func (UnimplementedReviewServiceServer) Current(context.Context, *CurrentRequest) (*CurrentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Current not implemented")
}
func (UnimplementedReviewServiceServer) ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListItems not implemented")
}
func (UnimplementedReviewServiceServer) ImportItems(context.Context, *ImportItemsRequest) (*ImportItemsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ImportItems not implemented")
}
func (UnimplementedReviewServiceServer) Watch(*WatchRequest, ReviewService_WatchServer) error {
	return status.Error(codes.Unimplemented, "method Watch not implemented")
}

func RegisterReviewServiceServer(s grpc.ServiceRegistrar, srv ReviewServiceServer) {
	s.RegisterService(&ReviewService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to a grpc.MethodDesc handler.
func unaryHandler[S any, Req any, Resp any](method string, call func(S, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _ReviewService_Watch_Handler(srv any, stream grpc.ServerStream) error {
	m := new(WatchRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ReviewServiceServer).Watch(m, &reviewServiceWatchServer{stream})
}

type ReviewService_WatchServer interface {
	Send(*Event) error
	grpc.ServerStream
}

type reviewServiceWatchServer struct {
	grpc.ServerStream
}

func (x *reviewServiceWatchServer) Send(m *Event) error {
	return x.ServerStream.SendMsg(m)
}

// ReviewService_ServiceDesc is the grpc.ServiceDesc for ReviewService.
var ReviewService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "shly.v1.ReviewService",
	HandlerType: (*ReviewServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Start", Handler: unaryHandler(ReviewService_Start_FullMethodName, ReviewServiceServer.Start)},
		{MethodName: "Skip", Handler: unaryHandler(ReviewService_Skip_FullMethodName, ReviewServiceServer.Skip)},
		{MethodName: "Verdict", Handler: unaryHandler(ReviewService_Verdict_FullMethodName, ReviewServiceServer.Verdict)},
		{MethodName: "Status", Handler: unaryHandler(ReviewService_Status_FullMethodName, ReviewServiceServer.Status)},
		{MethodName: "Accepted", Handler: unaryHandler(ReviewService_Accepted_FullMethodName, ReviewServiceServer.Accepted)},
		{MethodName: "Current", Handler: unaryHandler(ReviewService_Current_FullMethodName, ReviewServiceServer.Current)},
		{MethodName: "ListItems", Handler: unaryHandler(ReviewService_ListItems_FullMethodName, ReviewServiceServer.ListItems)},
		{MethodName: "ImportItems", Handler: unaryHandler(ReviewService_ImportItems_FullMethodName, ReviewServiceServer.ImportItems)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       _ReviewService_Watch_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "shly/v1/review.proto",
}
