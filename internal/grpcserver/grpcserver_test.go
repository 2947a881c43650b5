package grpcserver

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/patric-chuzhbe/userapp/internal/db/memorystorage"
	"github.com/patric-chuzhbe/userapp/internal/db/storage"
	"github.com/patric-chuzhbe/userapp/internal/logger"
	"github.com/patric-chuzhbe/userapp/internal/mockstorage"
	"github.com/patric-chuzhbe/userapp/internal/models"
	"github.com/patric-chuzhbe/userapp/internal/service"
)

const (
	bufSize     = 1024 * 1024
	dialTimeout = 5 * time.Second
)

// startTestGRPCServer serves db over an in-process listener and returns a connected client.
func startTestGRPCServer(t *testing.T, db storage.Storage) *UserServiceClient {
	t.Helper()

	require.NoError(t, logger.Init("debug"))

	lis := bufconn.Listen(bufSize)
	server := NewServer(NewUserHandler(service.New(db)))

	go func() {
		if err := server.Serve(lis); err != nil {
			t.Logf("gRPC server stopped: %v", err)
		}
	}()

	dialContext, cancelDial := context.WithTimeout(context.Background(), dialTimeout)
	defer cancelDial()

	conn, err := grpc.DialContext(
		dialContext,
		"bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		server.Stop()
		lis.Close()
	})

	return NewUserServiceClient(conn)
}

func seededStorage(t *testing.T) *memorystorage.MemoryStorage {
	t.Helper()
	db, err := memorystorage.NewWithUsers(
		models.User{ID: 1, Forename: "bob", Surname: "lee", Age: 22},
		models.User{ID: 2, Forename: "fred", Surname: "see", Age: 25},
	)
	require.NoError(t, err)

	return db
}

func mustStruct(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	result, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	return result
}

func assertCode(t *testing.T, expected codes.Code, err error) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, expected, st.Code())
}

func TestUserScenario(t *testing.T) {
	client := startTestGRPCServer(t, seededStorage(t))
	ctx := context.Background()

	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list.GetValues(), 2)
	assert.Equal(t, "bob", list.GetValues()[0].GetStructValue().AsMap()["forename"])

	usr, err := client.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"id": 2.0, "forename": "fred", "surname": "see", "age": 25.0}, usr.AsMap())

	created, err := client.Create(ctx, mustStruct(t, map[string]interface{}{
		"id": 1, "forename": "Janet", "surname": "Carlisle", "age": 32,
	}))
	require.NoError(t, err)
	assert.Equal(t, 3.0, created.AsMap()["id"])

	updated, err := client.Update(ctx, mustStruct(t, map[string]interface{}{
		"id": 1, "forename": "bob", "surname": "lee", "age": 23,
	}))
	require.NoError(t, err)
	assert.Equal(t, 23.0, updated.AsMap()["age"])

	require.NoError(t, client.Delete(ctx, 1))

	_, err = client.Get(ctx, 1)
	assertCode(t, codes.NotFound, err)

	err = client.Delete(ctx, 1)
	assertCode(t, codes.NotFound, err)
}

func TestInvalidRequests(t *testing.T) {
	client := startTestGRPCServer(t, seededStorage(t))
	ctx := context.Background()

	_, err := client.Get(ctx, 0)
	assertCode(t, codes.InvalidArgument, err)

	_, err = client.Create(ctx, mustStruct(t, map[string]interface{}{"forename": "Janet"}))
	assertCode(t, codes.InvalidArgument, err)

	_, err = client.Create(ctx, mustStruct(t, map[string]interface{}{
		"forename": "Janet", "surname": "Carlisle", "age": "old",
	}))
	assertCode(t, codes.InvalidArgument, err)

	_, err = client.Update(ctx, mustStruct(t, map[string]interface{}{
		"forename": "bob", "surname": "lee", "age": 23,
	}))
	assertCode(t, codes.InvalidArgument, err)

	_, err = client.Update(ctx, mustStruct(t, map[string]interface{}{
		"id": 42, "forename": "bob", "surname": "lee", "age": 23,
	}))
	assertCode(t, codes.NotFound, err)
}

func TestStorageFailureIsInternal(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("FindAll", mock.Anything).Return(nil, errors.New("connection refused"))

	client := startTestGRPCServer(t, db)

	_, err := client.List(context.Background())
	assertCode(t, codes.Internal, err)
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestRequestIDIsReturned(t *testing.T) {
	client := startTestGRPCServer(t, seededStorage(t))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "req-42")
	var header metadata.MD
	_, err := client.Get(ctx, 1, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-42"}, header.Get("x-request-id"))

	header = nil
	_, err = client.Get(context.Background(), 1, grpc.Header(&header))
	require.NoError(t, err)
	assert.Len(t, header.Get("x-request-id"), 1)
	assert.NotEmpty(t, header.Get("x-request-id")[0])
}
