// Package models holds the entity and wire types shared by the storage,
// service and transport layers.
package models

// User is a person record. ID is assigned by the storage on creation and
// never changes afterwards; a zero ID means "not persisted yet".
type User struct {
	ID       int    `json:"id"`
	Forename string `json:"forename" validate:"required,notblank"`
	Surname  string `json:"surname" validate:"required,notblank"`
	Age      int    `json:"age" validate:"gte=1,lte=150"`
}

// Users is the list representation returned by GET /user.
type Users []User

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeSQLite
	StorageTypeFile
	StorageTypeMemory
)
