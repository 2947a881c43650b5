// Package postgresdb provides a PostgreSQL-based implementation of the user storage.
// The schema is kept in embedded goose migrations applied on New.
package postgresdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/userapp/internal/logger"
	"github.com/patric-chuzhbe/userapp/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresDB is a PostgreSQL-backed user storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops every table of the public schema before migrating.
// Meant for test setups.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New connects to PostgreSQL, applies the embedded migrations and returns
// a ready storage.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := result.Ping(ctx); err != nil {
		_ = database.Close()
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `result.Ping()` calling: %w",
				err,
			)
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			_ = database.Close()
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := result.migrate(); err != nil {
		_ = database.Close()
		return nil, err
	}

	return result, nil
}

func (db *PostgresDB) migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(logger.NewGooseLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/migrate(): error while `goose.SetDialect()` calling: %w",
			err,
		)
	}

	if err := goose.Up(db.database, "migrations"); err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/migrate(): error while `goose.Up()` calling: %w",
			err,
		)
	}

	return nil
}

// FindAll returns all users ordered by id.
func (db *PostgresDB) FindAll(ctx context.Context) ([]models.User, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, forename, surname, age FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.User{}
	for rows.Next() {
		var usr models.User
		if err := rows.Scan(&usr.ID, &usr.Forename, &usr.Surname, &usr.Age); err != nil {
			return nil, err
		}
		result = append(result, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// FindByID fetches one user. A missing row is reported through the bool, not as an error.
func (db *PostgresDB) FindByID(ctx context.Context, id int) (models.User, bool, error) {
	return findByID(ctx, db.database, id)
}

func findByID(ctx context.Context, database queryer, id int) (models.User, bool, error) {
	row := database.QueryRowContext(
		ctx,
		`SELECT id, forename, surname, age FROM users WHERE id = $1`,
		id,
	)

	var usr models.User
	err := row.Scan(&usr.ID, &usr.Forename, &usr.Surname, &usr.Age)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, false, nil
		}
		return models.User{}, false, err
	}

	return usr, true, nil
}

// ExistsByID checks if a user row with the given id exists.
func (db *PostgresDB) ExistsByID(ctx context.Context, id int) (bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		id,
	)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Save overwrites the row with usr.ID, or inserts a new row when there is none.
func (db *PostgresDB) Save(ctx context.Context, usr models.User) (models.User, error) {
	if usr.ID != 0 {
		row := db.database.QueryRowContext(
			ctx,
			`
				UPDATE users
					SET forename = $2, surname = $3, age = $4
					WHERE id = $1
					RETURNING id
			`,
			usr.ID,
			usr.Forename,
			usr.Surname,
			usr.Age,
		)
		err := row.Scan(&usr.ID)
		if err == nil {
			return usr, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.User{}, err
		}
	}

	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO users (forename, surname, age) VALUES ($1, $2, $3) RETURNING id`,
		usr.Forename,
		usr.Surname,
		usr.Age,
	)
	if err := row.Scan(&usr.ID); err != nil {
		return models.User{}, err
	}

	return usr, nil
}

// DeleteByID removes the user row; a missing row is not an error.
func (db *PostgresDB) DeleteByID(ctx context.Context, id int) error {
	_, err := db.database.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)

	return err
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}
