// Package service holds the user business rules: existence checks,
// field overwrite on update and not-found signalling.
package service

import (
	"context"
	"fmt"

	"github.com/patric-chuzhbe/userapp/internal/db/storage"
	"github.com/patric-chuzhbe/userapp/internal/models"
)

type userFinder interface {
	FindAll(ctx context.Context) ([]models.User, error)

	FindByID(ctx context.Context, id int) (models.User, bool, error)

	ExistsByID(ctx context.Context, id int) (bool, error)
}

type userKeeper interface {
	Save(ctx context.Context, usr models.User) (models.User, error)

	DeleteByID(ctx context.Context, id int) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type userStorage interface {
	userFinder
	userKeeper
	pinger
}

// ErrUserNotFound is returned (wrapped, with the id in the message) by every
// operation addressing an id that is not stored.
var ErrUserNotFound = storage.ErrUserNotFound

type Service struct {
	db userStorage
}

func New(db userStorage) *Service {
	return &Service{
		db: db,
	}
}

func notFound(id int) error {
	return fmt.Errorf("user with id %d does not exist: %w", id, ErrUserNotFound)
}

// GetAll returns every stored user in storage order. The result is never nil.
func (s *Service) GetAll(ctx context.Context) ([]models.User, error) {
	users, err := s.db.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}

	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (models.User, error) {
	usr, found, err := s.db.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		return models.User{}, notFound(id)
	}

	return usr, nil
}

// Create persists a new user. Any client supplied id is dropped so the
// storage always assigns one.
func (s *Service) Create(ctx context.Context, usr models.User) (models.User, error) {
	usr.ID = 0

	return s.db.Save(ctx, usr)
}

// Update overwrites forename, surname and age of the stored user. The id
// argument is authoritative; usr.ID is ignored.
func (s *Service) Update(ctx context.Context, id int, usr models.User) (models.User, error) {
	exists, err := s.db.ExistsByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !exists {
		return models.User{}, notFound(id)
	}

	stored, found, err := s.db.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		// Removed between the two reads.
		return models.User{}, notFound(id)
	}

	stored.Forename = usr.Forename
	stored.Surname = usr.Surname
	stored.Age = usr.Age

	return s.db.Save(ctx, stored)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	exists, err := s.db.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return notFound(id)
	}

	return s.db.DeleteByID(ctx, id)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
