// Package storage declares the persistence contract the user service depends on.
// Every adapter under internal/db implements Storage.
package storage

import (
	"context"
	"errors"

	"github.com/patric-chuzhbe/userapp/internal/models"
)

// ErrUserNotFound is the domain error for a user id the storage does not own.
var ErrUserNotFound = errors.New("user not found")

type Storage interface {
	// FindAll returns every stored user ordered by id.
	FindAll(ctx context.Context) ([]models.User, error)

	// FindByID reports whether the user exists and returns it if so.
	FindByID(ctx context.Context, id int) (models.User, bool, error)

	ExistsByID(ctx context.Context, id int) (bool, error)

	// Save inserts usr when its ID is zero or unknown to the storage (a fresh
	// id is assigned), otherwise it overwrites the mutable fields of the row.
	Save(ctx context.Context, usr models.User) (models.User, error)

	// DeleteByID removes the row. Deleting a missing id is not an error.
	DeleteByID(ctx context.Context, id int) error

	Ping(ctx context.Context) error

	Close() error
}
