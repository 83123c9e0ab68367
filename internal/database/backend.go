// Package database wraps the database servers the installer provisions
// against. The installer core never opens its own connections, it
// always goes through a Backend.
package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// ErrUnknownEngine is returned when the configured engine matches no
// supported backend.
var ErrUnknownEngine = errors.New("unknown database engine")

// Backend executes administrative statements against one database
// server.
type Backend interface {
	// GrantAccess gives dbUser full rights on dbName.
	GrantAccess(ctx context.Context, dbName, dbUser string) error
	// ExecRawQuery runs one statement on dbName, connected as dbUser.
	ExecRawQuery(ctx context.Context, dbName, dbUser, dbPassword, query string, args ...any) error
}

// Params identifies the database server and its administrative account.
type Params struct {
	Host          string
	Port          int
	AdminUser     string
	AdminPassword string
}

// connect is swapped out by tests.
var connect = func(driver, dsn string) (*sqlx.DB, error) {
	return sqlx.Connect(driver, dsn)
}

// New returns the backend for the configured engine.
func New(engine string, params Params) (Backend, error) {
	switch engine {
	case "postgres":
		return &postgresBackend{params: params}, nil
	case "mysql":
		return &mysqlBackend{params: params}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownEngine, "%q", engine)
	}
}

// exec opens a short-lived connection, runs one statement and closes.
// The installer runs once, connection pooling buys nothing here.
func exec(ctx context.Context, driver, dsn, query string, args ...any) error {
	db, err := connect(driver, dsn)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer func() { _ = db.Close() }()

	// Queries are written with ? placeholders, Rebind adapts them to
	// the driver's syntax.
	query = db.Rebind(query)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "query failed")
	}
	return nil
}
