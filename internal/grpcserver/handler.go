package grpcserver

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/patric-chuzhbe/userapp/internal/logger"
	"github.com/patric-chuzhbe/userapp/internal/models"
	"github.com/patric-chuzhbe/userapp/internal/service"
)

type userService interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int) (models.User, error)
	Create(ctx context.Context, usr models.User) (models.User, error)
	Update(ctx context.Context, id int, usr models.User) (models.User, error)
	Delete(ctx context.Context, id int) error
}

// UserHandler serves userapp.UserService on top of the user service.
// Users travel as google.protobuf.Struct values shaped like the HTTP JSON body.
type UserHandler struct {
	svc userService
}

func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	users, err := h.svc.GetAll(ctx)
	if err != nil {
		return nil, serviceError(err)
	}

	result := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(users))}
	for _, usr := range users {
		item, err := userToStruct(usr)
		if err != nil {
			return nil, serviceError(err)
		}
		result.Values = append(result.Values, structpb.NewStructValue(item))
	}

	return result, nil
}

func (h *UserHandler) Get(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id, err := userID(req.GetValue())
	if err != nil {
		return nil, err
	}

	usr, err := h.svc.GetByID(ctx, id)
	if err != nil {
		return nil, serviceError(err)
	}

	return userToStruct(usr)
}

func (h *UserHandler) Create(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	usr, err := userFromStruct(req)
	if err != nil {
		return nil, err
	}

	created, err := h.svc.Create(ctx, usr)
	if err != nil {
		return nil, serviceError(err)
	}

	return userToStruct(created)
}

// Update expects the target id in the "id" field of the request.
func (h *UserHandler) Update(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	usr, err := userFromStruct(req)
	if err != nil {
		return nil, err
	}
	id, err := userID(int64(usr.ID))
	if err != nil {
		return nil, err
	}

	updated, err := h.svc.Update(ctx, id, usr)
	if err != nil {
		return nil, serviceError(err)
	}

	return userToStruct(updated)
}

func (h *UserHandler) Delete(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	id, err := userID(req.GetValue())
	if err != nil {
		return nil, err
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		return nil, serviceError(err)
	}

	return &emptypb.Empty{}, nil
}

func userID(value int64) (int, error) {
	if value < 1 {
		return 0, status.Errorf(codes.InvalidArgument, "user id must be a positive integer, got %d", value)
	}

	return int(value), nil
}

func serviceError(err error) error {
	if errors.Is(err, service.ErrUserNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}

	logger.Log.Errorln("storage failure: ", zap.Error(err))

	return status.Error(codes.Internal, "internal error")
}

func userToStruct(usr models.User) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":       usr.ID,
		"forename": usr.Forename,
		"surname":  usr.Surname,
		"age":      usr.Age,
	})
}

// userFromStruct decodes the request the same way the HTTP API decodes a
// JSON body, validation included.
func userFromStruct(req *structpb.Struct) (models.User, error) {
	payload, err := protojson.Marshal(req)
	if err != nil {
		return models.User{}, status.Error(codes.InvalidArgument, err.Error())
	}

	var usr models.User
	if err := json.Unmarshal(payload, &usr); err != nil {
		return models.User{}, status.Error(codes.InvalidArgument, "malformed user: "+err.Error())
	}

	if err := models.ValidateUser(usr); err != nil {
		return models.User{}, status.Error(codes.InvalidArgument, err.Error())
	}

	return usr, nil
}

// UserServiceServer is the server API of userapp.UserService.
type UserServiceServer interface {
	List(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Get(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	Create(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
}

const serviceName = "userapp.UserService"

// RegisterUserServiceServer attaches srv to the gRPC server s.
func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: listHandler},
		{MethodName: "Get", Handler: getHandler},
		{MethodName: "Create", Handler: createHandler},
		{MethodName: "Update", Handler: updateHandler},
		{MethodName: "Delete", Handler: deleteHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "userapp/user_service.proto",
}

func listHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserServiceServer).List(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/List"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UserServiceServer).List(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func getHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserServiceServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Get"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UserServiceServer).Get(ctx, req.(*wrapperspb.Int64Value))
	}

	return interceptor(ctx, in, info, handler)
}

func createHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserServiceServer).Create(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Create"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UserServiceServer).Create(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

func updateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserServiceServer).Update(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Update"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UserServiceServer).Update(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

func deleteHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserServiceServer).Delete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Delete"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UserServiceServer).Delete(ctx, req.(*wrapperspb.Int64Value))
	}

	return interceptor(ctx, in, info, handler)
}
