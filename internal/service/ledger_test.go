package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"store-rating/internal/domain"
	"store-rating/internal/testutil"
)

func TestSubmit_ScoreBoundaries(t *testing.T) {
	f := newFixture(t)
	ledger := NewLedger(f.opts)
	ctx := context.Background()

	for _, tc := range []struct {
		score int
		ok    bool
	}{{0, false}, {1, true}, {5, true}, {6, false}, {-3, false}} {
		u := testutil.SeedUser(t, f.db, "rater", strings.Repeat("x", tc.score+10)+"@x.io", domain.RoleUser)
		s := testutil.SeedStore(t, f.db, "store", nil)
		r, err := ledger.Submit(ctx, actorOf(u), s.ID, RatingInput{Score: tc.score})
		if tc.ok {
			require.NoError(t, err, "score %d", tc.score)
			assert.Equal(t, tc.score, r.Score)
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrValidation), "score %d: %v", tc.score, err)
		found, err := ledger.RatingFor(ctx, u.ID, s.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	}
}

func TestSubmit_CommentTooLong(t *testing.T) {
	f := newFixture(t)
	u := testutil.SeedUser(t, f.db, "U", "u@x.io", domain.RoleUser)
	s := testutil.SeedStore(t, f.db, "S", nil)

	_, err := NewLedger(f.opts).Submit(context.Background(), actorOf(u), s.ID, RatingInput{Score: 3, Comment: strings.Repeat("é", 501)})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "comment")
}

func TestSubmit_UnknownStore(t *testing.T) {
	f := newFixture(t)
	u := testutil.SeedUser(t, f.db, "U", "u@x.io", domain.RoleUser)
	_, err := NewLedger(f.opts).Submit(context.Background(), actorOf(u), 777, RatingInput{Score: 3})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSubmit_AdminDenied(t *testing.T) {
	f := newFixture(t)
	s := testutil.SeedStore(t, f.db, "S", nil)
	_, err := NewLedger(f.opts).Submit(context.Background(), adminActor, s.ID, RatingInput{Score: 3})
	assert.True(t, errors.Is(err, domain.ErrAccessDenied))
}

func TestSubmit_DuplicateKeepsFirst(t *testing.T) {
	f := newFixture(t)
	u := testutil.SeedUser(t, f.db, "U", "u@x.io", domain.RoleUser)
	s := testutil.SeedStore(t, f.db, "S", nil)
	ledger := NewLedger(f.opts)
	ctx := context.Background()

	before := promtest.ToFloat64(ratingSubmissions.WithLabelValues("duplicate"))

	_, err := ledger.Submit(ctx, actorOf(u), s.ID, RatingInput{Score: 4, Comment: "nice"})
	require.NoError(t, err)
	_, err = ledger.Submit(ctx, actorOf(u), s.ID, RatingInput{Score: 1, Comment: "changed my mind"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateRating))
	assert.Equal(t, "you have already rated this store", err.Error())

	r, err := ledger.RatingFor(ctx, u.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Score)
	assert.Equal(t, "nice", r.Comment)
	assert.Equal(t, before+1, promtest.ToFloat64(ratingSubmissions.WithLabelValues("duplicate")))
}

// The test database has a single connection, so the submissions are serialized at storage and
// this checks outcome counts only. TestSubmit_UniqueIndexIsTheGuarantee covers an insert that
// slips past the lookup.
func TestSubmit_ConcurrentSubmitsYieldOneRating(t *testing.T) {
	f := newFixture(t)
	u := testutil.SeedUser(t, f.db, "U", "u@x.io", domain.RoleUser)
	s := testutil.SeedStore(t, f.db, "S", nil)
	ledger := NewLedger(f.opts)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Submit(context.Background(), actorOf(u), s.ID, RatingInput{Score: 1 + i%5})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrDuplicateRating), "%v", err)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, f.db.Model(&domain.Rating{}).Where("user_id = ? AND store_id = ?", u.ID, s.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// blindRatings hides existing ratings from the lookup so the insert reaches the unique index.
type blindRatings struct{ domain.RatingRepository }

func (blindRatings) FindByUserAndStore(context.Context, uint, uint) (*domain.Rating, error) {
	return nil, nil
}

func TestSubmit_UniqueIndexIsTheGuarantee(t *testing.T) {
	f := newFixture(t)
	u := testutil.SeedUser(t, f.db, "U", "u@x.io", domain.RoleUser)
	s := testutil.SeedStore(t, f.db, "S", nil)
	testutil.SeedRating(t, f.db, u, s, 2, "")

	opts := f.opts
	opts.Ratings = blindRatings{f.opts.Ratings}
	_, err := NewLedger(opts).Submit(context.Background(), actorOf(u), s.ID, RatingInput{Score: 5})
	assert.True(t, errors.Is(err, domain.ErrDuplicateRating))
}

func TestSubmit_DeletedRaterIsNotFound(t *testing.T) {
	f := newFixture(t)
	u := testutil.SeedUser(t, f.db, "U", "u@x.io", domain.RoleUser)
	s := testutil.SeedStore(t, f.db, "S", nil)
	ctx := context.Background()
	require.NoError(t, f.admin.DeleteUser(ctx, adminActor, u.ID))

	// the token of a deleted user still carries a valid actor
	_, err := NewLedger(f.opts).Submit(ctx, actorOf(u), s.ID, RatingInput{Score: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "%v", err)
	assert.Equal(t, "user not found", err.Error())

	var count int64
	require.NoError(t, f.db.Model(&domain.Rating{}).Count(&count).Error)
	assert.Zero(t, count)
	raters, err := NewLedger(f.opts).RatingsForStore(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, raters)
}

// staleStores answers FindByID from a snapshot taken before the store was deleted.
type staleStores struct {
	domain.StoreRepository
	snapshot *domain.Store
}

func (s staleStores) FindByID(context.Context, uint) (*domain.Store, error) { return s.snapshot, nil }

func TestSubmit_StoreDeletedAfterLookupIsNotFound(t *testing.T) {
	f := newFixture(t)
	u := testutil.SeedUser(t, f.db, "U", "u@x.io", domain.RoleUser)
	s := testutil.SeedStore(t, f.db, "S", nil)
	ctx := context.Background()
	require.NoError(t, f.admin.DeleteStore(ctx, adminActor, s.ID))

	opts := f.opts
	opts.Stores = staleStores{StoreRepository: f.opts.Stores, snapshot: s}
	_, err := NewLedger(opts).Submit(ctx, actorOf(u), s.ID, RatingInput{Score: 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "%v", err)
	assert.Equal(t, "store not found", err.Error())

	var count int64
	require.NoError(t, f.db.Model(&domain.Rating{}).Where("store_id = ?", s.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmit_PublishesEventAndSurvivesPublishFailure(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishJSON", mock.Anything, EventRatingCreated, mock.MatchedBy(func(ev Event) bool {
		r, ok := ev.Data.(*domain.Rating)
		return ok && ev.Type == EventRatingCreated && r.Score == 5
	})).Return(errors.New("broker down")).Once()

	f := newFixture(t, func(o *Options) { o.Publisher = pub })
	u := testutil.SeedUser(t, f.db, "U", "u@x.io", domain.RoleUser)
	s := testutil.SeedStore(t, f.db, "S", nil)

	r, err := NewLedger(f.opts).Submit(context.Background(), actorOf(u), s.ID, RatingInput{Score: 5})
	require.NoError(t, err)
	assert.NotZero(t, r.ID)
	pub.AssertExpectations(t)
}

func TestRatingsForStore_NewestFirstWithIdentity(t *testing.T) {
	f := newFixture(t)
	a := testutil.SeedUser(t, f.db, "Alice", "alice@x.io", domain.RoleUser)
	b := testutil.SeedUser(t, f.db, "Bob", "bob@x.io", domain.RoleUser)
	s := testutil.SeedStore(t, f.db, "S", nil)
	first := testutil.SeedRating(t, f.db, a, s, 3, "")
	second := testutil.SeedRating(t, f.db, b, s, 5, "")

	rows, err := NewLedger(f.opts).RatingsForStore(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// equal timestamps fall back to id DESC
	if rows[0].CreatedAt.Equal(rows[1].CreatedAt) {
		assert.Equal(t, second.ID, rows[0].ID)
	}
	ids := []uint{rows[0].ID, rows[1].ID}
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)
	for _, r := range rows {
		assert.NotEmpty(t, r.UserName)
		assert.NotEmpty(t, r.UserEmail)
	}
}
