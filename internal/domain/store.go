package domain

import (
	"context"
	"time"

	"store-rating/internal/query"
)

type Store struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Address   string    `gorm:"size:400;not null" json:"address"`
	Email     string    `gorm:"size:191;not null" json:"email"`
	OwnerID   *uint     `gorm:"index" json:"ownerId"` // nil: unowned system store
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Store) TableName() string { return "stores" }

// OwnedBy reports whether ownerID owns the store.
func (s *Store) OwnedBy(ownerID uint) bool {
	return s.OwnerID != nil && *s.OwnerID == ownerID
}

// StoreScope narrows a store listing to what an actor may see.
// OwnerID set: only that owner's stores. OwnedOnly: only stores with an owner.
type StoreScope struct {
	OwnerID   *uint
	OwnedOnly bool
}

type StoreRepository interface {
	Create(ctx context.Context, s *Store) error
	FindByID(ctx context.Context, id uint) (*Store, error)
	// FindOwned returns nil when the store is missing or belongs to someone else.
	FindOwned(ctx context.Context, id, ownerID uint) (*Store, error)
	List(ctx context.Context, scope StoreScope, spec query.FilterSpec) ([]Store, error)
	Update(ctx context.Context, s *Store) error
	// Delete removes the store and its ratings.
	Delete(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}
