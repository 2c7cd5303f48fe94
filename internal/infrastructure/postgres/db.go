package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by the repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	codeUniqueViolation  = "23505"
	codeInvalidTextRepr  = "22P02"
	constraintUsersEmail = "users_email_key"
	constraintUsersUname = "users_username_key"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// isMalformedID reports errors raised when a non-UUID string is compared to a uuid column.
func isMalformedID(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeInvalidTextRepr
}
