package service

import (
	"time"

	"store-rating/internal/domain"
)

const unknownRater = "Unknown"

type StoreRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RaterView is one rating as shown to the store's owner or an admin.
type RaterView struct {
	UserID    uint      `json:"userId"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Score     int       `json:"score"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type RatersView struct {
	Store  StoreRef    `json:"store"`
	Raters []RaterView `json:"raters"`
}

type OwnedStoreView struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	domain.StoreAggregate
}

type AdminUserView struct {
	ID      uint             `json:"id"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Address string           `json:"address"`
	Role    domain.Role      `json:"role"`
	Stores  []OwnedStoreView `json:"stores,omitzero"`
}

type AdminStoreView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	OwnerID   *uint     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	domain.StoreAggregate
}

type OwnerStoreView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	domain.StoreAggregate
	Raters []RaterView `json:"raters"`
}

// UserStoreView carries no identity or comment of any other rater.
type UserStoreView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	UserRating *int   `json:"userRating"`
	domain.StoreAggregate
}

type ProfileView struct {
	ID      uint        `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Address string      `json:"address"`
	Role    domain.Role `json:"role"`
}

func projectProfile(u *domain.User) ProfileView {
	return ProfileView{ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address, Role: u.Role}
}

// projectAdminUser attaches stores only for owners; other roles never carry the field.
func projectAdminUser(u *domain.User, owned []domain.Store, aggs map[uint]domain.StoreAggregate) AdminUserView {
	v := AdminUserView{ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address, Role: u.Role}
	if u.Role != domain.RoleOwner {
		return v
	}
	v.Stores = make([]OwnedStoreView, 0, len(owned))
	for _, s := range owned {
		v.Stores = append(v.Stores, OwnedStoreView{
			ID: s.ID, Name: s.Name, Email: s.Email, Address: s.Address,
			StoreAggregate: aggs[s.ID],
		})
	}
	return v
}

func projectAdminStore(s *domain.Store, agg domain.StoreAggregate) AdminStoreView {
	return AdminStoreView{
		ID: s.ID, Name: s.Name, Email: s.Email, Address: s.Address,
		OwnerID: s.OwnerID, CreatedAt: s.CreatedAt,
		StoreAggregate: agg,
	}
}

func projectOwnerStore(s *domain.Store, agg domain.StoreAggregate, raters []RaterView) OwnerStoreView {
	if raters == nil {
		raters = []RaterView{}
	}
	return OwnerStoreView{
		ID: s.ID, Name: s.Name, Email: s.Email, Address: s.Address, CreatedAt: s.CreatedAt,
		StoreAggregate: agg,
		Raters:         raters,
	}
}

func projectUserStore(s *domain.Store, agg domain.StoreAggregate, mine *int) UserStoreView {
	return UserStoreView{
		ID: s.ID, Name: s.Name, Email: s.Email, Address: s.Address,
		UserRating:     mine,
		StoreAggregate: agg,
	}
}

func projectRaters(rows []domain.RatingWithRater) []RaterView {
	out := make([]RaterView, 0, len(rows))
	for _, r := range rows {
		v := RaterView{
			UserID:    r.UserID,
			Name:      r.UserName,
			Score:     r.Score,
			CreatedAt: r.CreatedAt,
		}
		if v.Name == "" {
			v.Name = unknownRater
		}
		if r.UserEmail != "" {
			email := r.UserEmail
			v.Email = &email
		}
		if r.Comment != "" {
			c := r.Comment
			v.Comment = &c
		}
		out = append(out, v)
	}
	return out
}
