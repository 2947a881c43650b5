// Package mockstorage provides a testify-based mock implementation
// of the user storage used by the service and transport packages.
// It is used for unit testing error paths that real storages cannot produce on demand.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/userapp/internal/models"
)

// StorageMock is a testify mock that implements storage.Storage.
type StorageMock struct {
	mock.Mock
}

// FindAll mocks listing every user.
func (m *StorageMock) FindAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

// FindByID mocks fetching a user by id.
func (m *StorageMock) FindByID(ctx context.Context, id int) (models.User, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Bool(1), args.Error(2)
}

// ExistsByID mocks the existence check.
func (m *StorageMock) ExistsByID(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Save mocks inserting or overwriting a user.
func (m *StorageMock) Save(ctx context.Context, usr models.User) (models.User, error) {
	args := m.Called(ctx, usr)
	return args.Get(0).(models.User), args.Error(1)
}

// DeleteByID mocks removing a user.
func (m *StorageMock) DeleteByID(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
