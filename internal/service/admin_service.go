package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"store-rating/internal/domain"
	"store-rating/internal/query"
	"store-rating/pkg/utils"
)

type Summary struct {
	UsersCount   int64 `json:"usersCount"`
	StoresCount  int64 `json:"storesCount"`
	RatingsCount int64 `json:"ratingsCount"`
}

type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,min=20,max=60"`
	Email    string      `json:"email" validate:"required,email,max=191"`
	Address  string      `json:"address" validate:"required,max=400"`
	Password string      `json:"password" validate:"required,min=8,max=16,password_policy"`
	Role     domain.Role `json:"role" validate:"required,role"`
}

// AdminService serves the audit and management operations. Every method requires an admin actor.
type AdminService struct {
	users   domain.UserRepository
	stores  domain.StoreRepository
	ratings domain.RatingRepository
	ledger  *Ledger
	agg     *Aggregator
	cache   *SummaryCache
	notify  *notifier
}

func NewAdminService(o Options) *AdminService {
	return &AdminService{
		users:   o.Users,
		stores:  o.Stores,
		ratings: o.Ratings,
		ledger:  NewLedger(o),
		agg:     NewAggregator(o.Ratings, o.Strategy),
		cache:   o.SummaryCache,
		notify:  o.notifier(),
	}
}

func (s *AdminService) Summary(ctx context.Context, actor domain.ActorContext) (Summary, error) {
	if err := RequireAdmin(actor); err != nil {
		return Summary{}, err
	}
	if s.cache == nil {
		sum, err := s.countAll(ctx)
		if err != nil {
			return Summary{}, err
		}
		return *sum, nil
	}
	mark, err := s.users.MaxID(ctx)
	if err != nil {
		return Summary{}, domain.Internal("user watermark", err)
	}
	sum, err := s.cache.Get(ctx, mark, s.countAll)
	if err != nil {
		return Summary{}, err
	}
	return *sum, nil
}

func (s *AdminService) countAll(ctx context.Context) (*Summary, error) {
	var sum Summary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { sum.UsersCount, err = s.users.Count(ctx); return })
	g.Go(func() (err error) { sum.StoresCount, err = s.stores.Count(ctx); return })
	g.Go(func() (err error) { sum.RatingsCount, err = s.ratings.Count(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, domain.Internal("count summary", err)
	}
	return &sum, nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor domain.ActorContext, p query.Params) ([]AdminUserView, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, query.Compile(query.EntityUser, p))
	if err != nil {
		return nil, domain.Internal("list users", err)
	}

	byOwner := map[uint][]domain.Store{}
	var aggs map[uint]domain.StoreAggregate
	if hasOwner(users) {
		owned, err := s.stores.List(ctx, domain.StoreScope{OwnedOnly: true}, query.Default(query.EntityStore))
		if err != nil {
			return nil, domain.Internal("list owned stores", err)
		}
		for _, st := range owned {
			byOwner[*st.OwnerID] = append(byOwner[*st.OwnerID], st)
		}
		if aggs, err = s.agg.Aggregate(ctx, storeIDs(owned)...); err != nil {
			return nil, err
		}
	}

	out := make([]AdminUserView, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, projectAdminUser(u, byOwner[u.ID], aggs))
	}
	return out, nil
}

func (s *AdminService) GetUser(ctx context.Context, actor domain.ActorContext, id uint) (AdminUserView, error) {
	if err := RequireAdmin(actor); err != nil {
		return AdminUserView{}, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return AdminUserView{}, domain.Internal("find user", err)
	}
	if u == nil {
		return AdminUserView{}, domain.NotFound("user")
	}
	if u.Role != domain.RoleOwner {
		return projectAdminUser(u, nil, nil), nil
	}
	ownerID := u.ID
	owned, err := s.stores.List(ctx, domain.StoreScope{OwnerID: &ownerID}, query.Default(query.EntityStore))
	if err != nil {
		return AdminUserView{}, domain.Internal("list owned stores", err)
	}
	aggs, err := s.agg.Aggregate(ctx, storeIDs(owned)...)
	if err != nil {
		return AdminUserView{}, err
	}
	return projectAdminUser(u, owned, aggs), nil
}

// CreateUser rejects a taken email as a validation error. The unique index on email settles races.
func (s *AdminService) CreateUser(ctx context.Context, actor domain.ActorContext, in CreateUserInput) (AdminUserView, error) {
	if err := RequireAdmin(actor); err != nil {
		return AdminUserView{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)
	in.Role = domain.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	if err := check(in); err != nil {
		return AdminUserView{}, err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return AdminUserView{}, domain.Internal("find user by email", err)
	}
	if existing != nil {
		return AdminUserView{}, domain.Validation("email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return AdminUserView{}, domain.Internal("hash password", err)
	}
	u := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return AdminUserView{}, domain.Internal("create user", err)
	}
	view := projectAdminUser(u, nil, nil)
	s.notify.changed(ctx, EventUserCreated, actor.ID, view)
	return view, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, actor domain.ActorContext, id uint) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return domain.Internal("delete user", err)
	}
	if !ok {
		return domain.NotFound("user")
	}
	s.notify.changed(ctx, EventUserDeleted, actor.ID, map[string]uint{"id": id})
	return nil
}

func (s *AdminService) ListStores(ctx context.Context, actor domain.ActorContext, p query.Params) ([]AdminStoreView, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	stores, err := s.stores.List(ctx, domain.StoreScope{}, query.Compile(query.EntityStore, p))
	if err != nil {
		return nil, domain.Internal("list stores", err)
	}
	aggs, err := s.agg.Aggregate(ctx, storeIDs(stores)...)
	if err != nil {
		return nil, err
	}
	out := make([]AdminStoreView, 0, len(stores))
	for i := range stores {
		out = append(out, projectAdminStore(&stores[i], aggs[stores[i].ID]))
	}
	return out, nil
}

func (s *AdminService) DeleteStore(ctx context.Context, actor domain.ActorContext, id uint) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	ok, err := s.stores.Delete(ctx, id)
	if err != nil {
		return domain.Internal("delete store", err)
	}
	if !ok {
		return domain.NotFound("store")
	}
	s.notify.changed(ctx, EventStoreDeleted, actor.ID, map[string]uint{"id": id})
	return nil
}

// StoreRatings is the audit view of one store's ratings, any owner.
func (s *AdminService) StoreRatings(ctx context.Context, actor domain.ActorContext, id uint) (RatersView, error) {
	if err := RequireAdmin(actor); err != nil {
		return RatersView{}, err
	}
	st, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return RatersView{}, domain.Internal("find store", err)
	}
	if st == nil {
		return RatersView{}, domain.NotFound("store")
	}
	rows, err := s.ledger.RatingsForStore(ctx, st.ID)
	if err != nil {
		return RatersView{}, err
	}
	return RatersView{Store: StoreRef{ID: st.ID, Name: st.Name}, Raters: projectRaters(rows)}, nil
}

func hasOwner(users []domain.User) bool {
	for i := range users {
		if users[i].Role == domain.RoleOwner {
			return true
		}
	}
	return false
}
