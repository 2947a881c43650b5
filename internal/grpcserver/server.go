// Package grpcserver exposes the user service over gRPC as userapp.UserService.
package grpcserver

import (
	"net"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/userapp/internal/grpcserver/interceptor"
)

// NewServer builds a gRPC server with the user service registered.
func NewServer(handler UserServiceServer) *grpc.Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryRequestIDInterceptor(),
			interceptor.UnaryLoggingInterceptor(),
		),
	)
	RegisterUserServiceServer(server, handler)

	return server
}

// NewGRPCServer is NewServer plus a TCP listener bound to addr.
func NewGRPCServer(addr string, handler UserServiceServer) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	return NewServer(handler), lis, nil
}
