package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jobtracker.v1.JobService"

// JobServiceServer is the server API of ServiceName. Requests and responses
// are google.protobuf.Struct values carrying the REST JSON shapes.
type JobServiceServer interface {
	ListJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(JobServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc registers a JobServiceServer on a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*JobServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListJobs", Handler: unaryHandler("ListJobs", JobServiceServer.ListJobs)},
		{MethodName: "CreateJob", Handler: unaryHandler("CreateJob", JobServiceServer.CreateJob)},
		{MethodName: "UpdateJob", Handler: unaryHandler("UpdateJob", JobServiceServer.UpdateJob)},
		{MethodName: "DeleteJob", Handler: unaryHandler("DeleteJob", JobServiceServer.DeleteJob)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobtracker/v1/job_service.proto",
}

// FullMethod returns the invocation path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(name string, m unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m(srv.(JobServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return m(srv.(JobServiceServer), ctx, req.(*structpb.Struct))
		})
	}
}

// Client calls a remote JobService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListJobs(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "ListJobs", in, opts...)
}

func (c *Client) CreateJob(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "CreateJob", in, opts...)
}

func (c *Client) UpdateJob(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "UpdateJob", in, opts...)
}

func (c *Client) DeleteJob(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "DeleteJob", in, opts...)
}
