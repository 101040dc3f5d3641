package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/xiaot623/gogo/recorder/internal/domain"
)

// classify maps a driver error to one of the domain error kinds.
// The driver error text is kept in the message; its type is not.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrStorage) {
		return err
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrStorage, err)
}

func isConstraintViolation(err error) bool {
	return isUniqueViolation(err) || isForeignKeyViolation(err)
}

func isUniqueViolation(err error) bool {
	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		return mattnErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			mattnErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var moderncErr *sqlite.Error
	if errors.As(err, &moderncErr) {
		switch moderncErr.Code() {
		case sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		return mattnErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var moderncErr *sqlite.Error
	if errors.As(err, &moderncErr) && moderncErr.Code() == sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
