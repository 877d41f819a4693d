package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"store-rating/internal/domain"
	"store-rating/internal/repo"
	"store-rating/internal/testutil"
)

type fixture struct {
	db    *gorm.DB
	opts  Options
	store *StoreService
	admin *AdminService
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	db := testutil.DB(t)
	opts := Options{
		Users:    repo.NewUserRepo(db),
		Stores:   repo.NewStoreRepo(db),
		Ratings:  repo.NewRatingRepo(db),
		Strategy: StrategyGrouped,
	}
	for _, m := range mutate {
		m(&opts)
	}
	return &fixture{db: db, opts: opts, store: NewStoreService(opts), admin: NewAdminService(opts)}
}

func actorOf(u *domain.User) domain.ActorContext {
	return domain.ActorContext{ID: u.ID, Role: u.Role}
}

var adminActor = domain.ActorContext{ID: 9999, Role: domain.RoleAdmin}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	return m.Called(ctx, key, v).Error(0)
}
