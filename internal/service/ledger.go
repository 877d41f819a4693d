package service

import (
	"context"
	"errors"
	"strings"

	"store-rating/internal/domain"
)

type RatingInput struct {
	Score   int    `json:"score" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// Ledger owns rating creation. The (user, store) unique index is what makes a rating
// write-once; the lookup before insert only saves a round trip in the common case.
type Ledger struct {
	users   domain.UserRepository
	stores  domain.StoreRepository
	ratings domain.RatingRepository
	notify  *notifier
}

func NewLedger(o Options) *Ledger {
	return &Ledger{users: o.Users, stores: o.Stores, ratings: o.Ratings, notify: o.notifier()}
}

func (l *Ledger) Submit(ctx context.Context, actor domain.ActorContext, storeID uint, in RatingInput) (*domain.Rating, error) {
	if err := RequireRater(actor); err != nil {
		return nil, err
	}
	in.Comment = strings.TrimSpace(in.Comment)
	if err := check(in); err != nil {
		ratingSubmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}

	store, err := l.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, domain.Internal("find store", err)
	}
	if store == nil {
		return nil, domain.NotFound("store")
	}

	existing, err := l.ratings.FindByUserAndStore(ctx, actor.ID, storeID)
	if err != nil {
		return nil, domain.Internal("find rating", err)
	}
	if existing != nil {
		ratingSubmissions.WithLabelValues("duplicate").Inc()
		return nil, domain.DuplicateRating(nil)
	}

	r := &domain.Rating{UserID: actor.ID, StoreID: storeID, Score: in.Score, Comment: in.Comment}
	if err := l.ratings.Create(ctx, r); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateRating):
			ratingSubmissions.WithLabelValues("duplicate").Inc()
			return nil, err
		case errors.Is(err, domain.ErrNotFound):
			// rater or store deleted after the lookups above
			ratingSubmissions.WithLabelValues("missing").Inc()
			return nil, l.missing(ctx, actor.ID)
		}
		return nil, domain.Internal("create rating", err)
	}
	ratingSubmissions.WithLabelValues("created").Inc()

	l.notify.changed(ctx, EventRatingCreated, actor.ID, r)
	return r, nil
}

func (l *Ledger) missing(ctx context.Context, userID uint) error {
	u, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Internal("find user", err)
	}
	if u == nil {
		return domain.NotFound("user")
	}
	return domain.NotFound("store")
}

// RatingsForStore lists a store's ratings newest first, each with the rater's public identity.
func (l *Ledger) RatingsForStore(ctx context.Context, storeID uint) ([]domain.RatingWithRater, error) {
	rows, err := l.ratings.ListByStore(ctx, storeID)
	if err != nil {
		return nil, domain.Internal("list ratings", err)
	}
	return rows, nil
}

// RatingFor returns nil when the user has not rated the store.
func (l *Ledger) RatingFor(ctx context.Context, userID, storeID uint) (*domain.Rating, error) {
	r, err := l.ratings.FindByUserAndStore(ctx, userID, storeID)
	if err != nil {
		return nil, domain.Internal("find rating", err)
	}
	return r, nil
}
