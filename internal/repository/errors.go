package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	ticketNumberConstraint = "tickets_numero_ticket_key"
)

var (
	// ErrDuplicateTicketNumber means another insert already took the generated number.
	ErrDuplicateTicketNumber = errors.New("ticket number already exists")
	// ErrDuplicate is any other uniqueness violation.
	ErrDuplicate = errors.New("duplicate data")
	// ErrForeignKey means a referenced row does not exist.
	ErrForeignKey = errors.New("invalid reference")
)

// translatePgError maps constraint violations to sentinel errors, wrapping the
// original so callers can still log it.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == ticketNumberConstraint {
			return errors.Join(ErrDuplicateTicketNumber, err)
		}
		return errors.Join(ErrDuplicate, err)
	case pgForeignKeyViolation:
		return errors.Join(ErrForeignKey, err)
	}
	return err
}
