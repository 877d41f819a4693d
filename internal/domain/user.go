package domain

import (
	"context"
	"time"

	"store-rating/internal/query"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:60;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"` // stored lower-cased
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Address      string    `gorm:"size:400" json:"address"`
	Role         Role      `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserIdentity is the public part of a user shown next to their ratings.
type UserIdentity struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, spec query.FilterSpec) ([]User, error)
	// Delete removes the user together with their ratings and owned stores.
	Delete(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)
	// MaxID is the highest user id, 0 for an empty table.
	MaxID(ctx context.Context) (uint, error)
}
