package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	sqliteUniqueFailed = "UNIQUE constraint failed: "
)

// uniqueViolation reports whether err is a unique index violation on table
// and, when the driver tells, which column was violated.
func uniqueViolation(err error, table string) (column string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return strings.TrimPrefix(pgErr.ConstraintName, "idx_"+table+"_"), true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	// sqlite: "UNIQUE constraint failed: users.email"
	if msg := err.Error(); strings.Contains(msg, sqliteUniqueFailed) {
		col := msg[strings.Index(msg, sqliteUniqueFailed)+len(sqliteUniqueFailed):]
		return strings.TrimPrefix(col, table+"."), true
	}
	return "", false
}

func foreignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return true
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated) ||
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
