// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"store-rating/internal/core/database"
	"store-rating/internal/domain"
)

var seq atomic.Int64

// DB returns a migrated in-memory sqlite database private to t.
// A single connection keeps the shared-cache database alive for the test's lifetime.
func DB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, seq.Add(1))
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func SeedUser(t testing.TB, db *gorm.DB, name, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: "x",
		Address:      "1 Test Street",
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedStore creates a store; owner may be nil for a system store.
func SeedStore(t testing.TB, db *gorm.DB, name string, owner *domain.User) *domain.Store {
	t.Helper()
	s := &domain.Store{
		Name:    name,
		Address: name + " Road",
		Email:   strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@stores.test",
	}
	if owner != nil {
		id := owner.ID
		s.OwnerID = &id
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func SeedRating(t testing.TB, db *gorm.DB, user *domain.User, store *domain.Store, score int, comment string) *domain.Rating {
	t.Helper()
	r := &domain.Rating{UserID: user.ID, StoreID: store.ID, Score: score, Comment: comment}
	require.NoError(t, db.Create(r).Error)
	return r
}
