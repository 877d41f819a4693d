package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true},
		{"mysql other", &mysql.MySQLError{Number: 1452}, false},
		{"sqlite text", errors.New("UNIQUE constraint failed: ratings.user_id, ratings.store_id"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKey(tc.err))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrForeignKeyViolated), true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, false},
		{"mysql no referenced row", &mysql.MySQLError{Number: 1452}, true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"sqlite text", errors.New("FOREIGN KEY constraint failed"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsForeignKeyViolation(tc.err))
		})
	}
}
