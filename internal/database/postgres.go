package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

type postgresBackend struct {
	params Params
}

func (b *postgresBackend) dsn(dbName, user, password string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		b.params.Host, b.params.Port, user, password, dbName)
}

func (b *postgresBackend) GrantAccess(ctx context.Context, dbName, dbUser string) error {
	query := fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s",
		pq.QuoteIdentifier(dbName), pq.QuoteIdentifier(dbUser))
	dsn := b.dsn("postgres", b.params.AdminUser, b.params.AdminPassword)
	return exec(ctx, "postgres", dsn, query)
}

func (b *postgresBackend) ExecRawQuery(ctx context.Context, dbName, dbUser, dbPassword, query string, args ...any) error {
	return exec(ctx, "postgres", b.dsn(dbName, dbUser, dbPassword), query, args...)
}
