package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// UserServiceClient is a thin client of userapp.UserService.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

func (c *UserServiceClient) List(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/List", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *UserServiceClient) Get(ctx context.Context, id int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Get", wrapperspb.Int64(id), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *UserServiceClient) Create(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Create", in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *UserServiceClient) Update(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Update", in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *UserServiceClient) Delete(ctx context.Context, id int64, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+serviceName+"/Delete", wrapperspb.Int64(id), new(emptypb.Empty), opts...)
}
