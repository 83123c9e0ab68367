package database

import (
	"context"
	"fmt"
	"strings"
)

type mysqlBackend struct {
	params Params
}

func (b *mysqlBackend) dsn(dbName, user, password string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		user, password, b.params.Host, b.params.Port, dbName)
}

// quoteIdentifier backtick-quotes a MySQL identifier.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (b *mysqlBackend) GrantAccess(ctx context.Context, dbName, dbUser string) error {
	query := fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO %s@'%%'",
		quoteIdentifier(dbName), quoteIdentifier(dbUser))
	dsn := b.dsn("mysql", b.params.AdminUser, b.params.AdminPassword)
	return exec(ctx, "mysql", dsn, query)
}

func (b *mysqlBackend) ExecRawQuery(ctx context.Context, dbName, dbUser, dbPassword, query string, args ...any) error {
	return exec(ctx, "mysql", b.dsn(dbName, dbUser, dbPassword), query, args...)
}
