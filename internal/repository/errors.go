package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateUser is returned when a username or email is already registered.
	ErrDuplicateUser = errors.New("username or email already exists")
	// ErrDuplicateResponse is returned when a question was already answered in a session.
	ErrDuplicateResponse = errors.New("response already recorded")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
