// Package memorystorage is the non-durable user storage used when no database
// or file is configured, and as the in-memory fake in tests.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/userapp/internal/db/jsondb"
	"github.com/patric-chuzhbe/userapp/internal/models"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.NewCache(),
		},
	}, nil
}

// NewWithUsers returns a storage pre-filled with users, keeping their ids.
// The next assigned id follows the largest one.
func NewWithUsers(users ...models.User) (*MemoryStorage, error) {
	theStorage, err := New()
	if err != nil {
		return nil, err
	}

	for _, usr := range users {
		stored := usr
		theStorage.Cache.Users[usr.ID] = &stored
		if usr.ID >= theStorage.Cache.NextUserID {
			theStorage.Cache.NextUserID = usr.ID + 1
		}
	}

	return theStorage, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
