// Package sqlitedb provides a SQLite-backed user storage built on the pure Go
// modernc.org/sqlite driver. It needs no external service, which makes it the
// durable option for single-node deployments.
package sqlitedb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/patric-chuzhbe/userapp/internal/logger"
	"github.com/patric-chuzhbe/userapp/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteDB persists users in a single SQLite file.
type SQLiteDB struct {
	database *sql.DB
}

// New opens (or creates) the database file at path and applies the embedded migrations.
func New(ctx context.Context, path string) (*SQLiteDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("in internal/db/sqlitedb/sqlitedb.go/New(): storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("in internal/db/sqlitedb/sqlitedb.go/New(): error while `sql.Open()` calling: %w", err)
	}
	// SQLite allows a single writer at a time.
	database.SetMaxOpenConns(1)

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("in internal/db/sqlitedb/sqlitedb.go/New(): error while `database.PingContext()` calling: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(logger.NewGooseLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("in internal/db/sqlitedb/sqlitedb.go/New(): error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(database, "migrations"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("in internal/db/sqlitedb/sqlitedb.go/New(): error while `goose.Up()` calling: %w", err)
	}

	return &SQLiteDB{database: database}, nil
}

func (db *SQLiteDB) FindAll(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, forename, surname, age FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("find all users: %w", err)
	}
	defer rows.Close()

	result := []models.User{}
	for rows.Next() {
		var usr models.User
		if err := rows.Scan(&usr.ID, &usr.Forename, &usr.Surname, &usr.Age); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return result, nil
}

func (db *SQLiteDB) FindByID(ctx context.Context, id int) (models.User, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, false, err
	}

	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, forename, surname, age FROM users WHERE id = ?`,
		id,
	)

	var usr models.User
	err := row.Scan(&usr.ID, &usr.Forename, &usr.Surname, &usr.Age)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, false, nil
		}
		return models.User{}, false, fmt.Errorf("find user %d: %w", id, err)
	}

	return usr, true, nil
}

func (db *SQLiteDB) ExistsByID(ctx context.Context, id int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var exists bool
	err := db.database.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}

	return exists, nil
}

func (db *SQLiteDB) Save(ctx context.Context, usr models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	if usr.ID != 0 {
		res, err := db.database.ExecContext(
			ctx,
			`UPDATE users SET forename = ?, surname = ?, age = ? WHERE id = ?`,
			usr.Forename,
			usr.Surname,
			usr.Age,
			usr.ID,
		)
		if err != nil {
			return models.User{}, fmt.Errorf("update user %d: %w", usr.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return models.User{}, fmt.Errorf("update user %d: %w", usr.ID, err)
		}
		if affected > 0 {
			return usr, nil
		}
	}

	res, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (forename, surname, age) VALUES (?, ?, ?)`,
		usr.Forename,
		usr.Surname,
		usr.Age,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	usr.ID = int(id)

	return usr, nil
}

func (db *SQLiteDB) DeleteByID(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := db.database.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	return nil
}

func (db *SQLiteDB) Ping(ctx context.Context) error {
	return db.database.PingContext(ctx)
}

// Close is safe on a nil receiver.
func (db *SQLiteDB) Close() error {
	if db == nil || db.database == nil {
		return nil
	}

	return db.database.Close()
}
