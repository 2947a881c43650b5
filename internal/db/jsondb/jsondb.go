// Package jsondb is a file-backed user storage. The whole data set lives in
// memory and is written to a JSON file on Close.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/userapp/internal/models"
)

type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

type CacheStruct struct {
	Users      map[int]*models.User
	NextUserID int
}

// NewCache returns an empty cache whose first assigned id is 1.
func NewCache() CacheStruct {
	return CacheStruct{
		Users:      map[int]*models.User{},
		NextUserID: 1,
	}
}

func initDBFile(fileName string) error {
	return writeToJSONFile(fileName, NewCache())
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New loads fileName, creating it with an empty data set when missing.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `parseJSONFile()` calling: %w", err)
		}
		if err := initDBFile(fileName); err != nil {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `initDBFile()` calling: %w", err)
		}
	}

	db.normalize()

	return db, nil
}

// normalize repairs a cache decoded from a hand-edited or older file.
func (db *JSONDB) normalize() {
	if db.Cache.Users == nil {
		db.Cache.Users = map[int]*models.User{}
	}
	for id, usr := range db.Cache.Users {
		if usr == nil {
			delete(db.Cache.Users, id)
			continue
		}
		usr.ID = id
		if id >= db.Cache.NextUserID {
			db.Cache.NextUserID = id + 1
		}
	}
	if db.Cache.NextUserID < 1 {
		db.Cache.NextUserID = 1
	}
}

func (db *JSONDB) FindAll(ctx context.Context) ([]models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ids := funk.Keys(db.Cache.Users).([]int)
	sort.Ints(ids)

	result := make([]models.User, 0, len(ids))
	for _, id := range ids {
		result = append(result, *db.Cache.Users[id])
	}

	return result, nil
}

func (db *JSONDB) FindByID(ctx context.Context, id int) (models.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.Cache.Users[id]
	if !found {
		return models.User{}, false, nil
	}

	return *usr, true, nil
}

func (db *JSONDB) ExistsByID(ctx context.Context, id int) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, found := db.Cache.Users[id]

	return found, nil
}

func (db *JSONDB) Save(ctx context.Context, usr models.User) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Users[usr.ID]; !found || usr.ID == 0 {
		usr.ID = db.Cache.NextUserID
		db.Cache.NextUserID++
	}

	stored := usr
	db.Cache.Users[usr.ID] = &stored

	return usr, nil
}

func (db *JSONDB) DeleteByID(ctx context.Context, id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.Cache.Users, id)

	return nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the data set to the file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
