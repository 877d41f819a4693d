package service

import (
	"context"
	"strings"

	"store-rating/internal/domain"
	"store-rating/internal/query"
)

type StoreInput struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"required,min=1,max=400"`
	Email   string `json:"email" validate:"required,email,max=191"`
}

// StorePatch updates only the fields that are present.
type StorePatch struct {
	Name    *string `json:"name" validate:"omitnil,min=1,max=200"`
	Address *string `json:"address" validate:"omitnil,min=1,max=400"`
	Email   *string `json:"email" validate:"omitnil,email,max=191"`
}

// StoreService serves users and owners: browsing, rating and managing owned stores.
type StoreService struct {
	users   domain.UserRepository
	stores  domain.StoreRepository
	ratings domain.RatingRepository
	ledger  *Ledger
	agg     *Aggregator
	notify  *notifier
}

func NewStoreService(o Options) *StoreService {
	return &StoreService{
		users:   o.Users,
		stores:  o.Stores,
		ratings: o.Ratings,
		ledger:  NewLedger(o),
		agg:     NewAggregator(o.Ratings, o.Strategy),
		notify:  o.notifier(),
	}
}

// ListStores is the browse listing with each store's aggregate and the caller's own score.
func (s *StoreService) ListStores(ctx context.Context, actor domain.ActorContext, p query.Params) ([]UserStoreView, error) {
	if err := RequireRater(actor); err != nil {
		return nil, err
	}
	stores, err := s.stores.List(ctx, BrowseScope(actor), query.Compile(query.EntityStore, p))
	if err != nil {
		return nil, domain.Internal("list stores", err)
	}
	ids := storeIDs(stores)
	aggs, err := s.agg.Aggregate(ctx, ids...)
	if err != nil {
		return nil, err
	}
	mine, err := s.agg.MyRatings(ctx, actor.ID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]UserStoreView, 0, len(stores))
	for i := range stores {
		st := &stores[i]
		out = append(out, projectUserStore(st, aggs[st.ID], mine[st.ID]))
	}
	return out, nil
}

func (s *StoreService) SubmitRating(ctx context.Context, actor domain.ActorContext, storeID uint, in RatingInput) (*domain.Rating, error) {
	return s.ledger.Submit(ctx, actor, storeID, in)
}

// OwnerListStores is the owner dashboard: own stores with aggregates and every rater.
func (s *StoreService) OwnerListStores(ctx context.Context, actor domain.ActorContext, p query.Params) ([]OwnerStoreView, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	ownerID := actor.ID
	stores, err := s.stores.List(ctx, domain.StoreScope{OwnerID: &ownerID}, query.Compile(query.EntityStore, p))
	if err != nil {
		return nil, domain.Internal("list owner stores", err)
	}
	aggs, err := s.agg.Aggregate(ctx, storeIDs(stores)...)
	if err != nil {
		return nil, err
	}
	out := make([]OwnerStoreView, 0, len(stores))
	for i := range stores {
		st := &stores[i]
		rows, err := s.ledger.RatingsForStore(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, projectOwnerStore(st, aggs[st.ID], projectRaters(rows)))
	}
	return out, nil
}

// ListRatersOfStore reports a store the owner does not own as not found.
func (s *StoreService) ListRatersOfStore(ctx context.Context, actor domain.ActorContext, storeID uint) (RatersView, error) {
	st, err := s.ownedStore(ctx, actor, storeID)
	if err != nil {
		return RatersView{}, err
	}
	rows, err := s.ledger.RatingsForStore(ctx, st.ID)
	if err != nil {
		return RatersView{}, err
	}
	return RatersView{Store: StoreRef{ID: st.ID, Name: st.Name}, Raters: projectRaters(rows)}, nil
}

func (s *StoreService) OwnerCreateStore(ctx context.Context, actor domain.ActorContext, in StoreInput) (OwnerStoreView, error) {
	if err := RequireOwner(actor); err != nil {
		return OwnerStoreView{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return OwnerStoreView{}, err
	}
	ownerID := actor.ID
	st := &domain.Store{Name: in.Name, Address: in.Address, Email: in.Email, OwnerID: &ownerID}
	if err := s.stores.Create(ctx, st); err != nil {
		return OwnerStoreView{}, domain.Internal("create store", err)
	}
	s.notify.changed(ctx, EventStoreCreated, actor.ID, st)
	return projectOwnerStore(st, domain.StoreAggregate{}, nil), nil
}

func (s *StoreService) OwnerUpdateStore(ctx context.Context, actor domain.ActorContext, storeID uint, patch StorePatch) (OwnerStoreView, error) {
	st, err := s.ownedStore(ctx, actor, storeID)
	if err != nil {
		return OwnerStoreView{}, err
	}
	trimPatch(&patch)
	if err := check(patch); err != nil {
		return OwnerStoreView{}, err
	}
	if patch.Name != nil {
		st.Name = *patch.Name
	}
	if patch.Address != nil {
		st.Address = *patch.Address
	}
	if patch.Email != nil {
		st.Email = *patch.Email
	}
	if err := s.stores.Update(ctx, st); err != nil {
		return OwnerStoreView{}, domain.Internal("update store", err)
	}
	s.notify.changed(ctx, EventStoreUpdated, actor.ID, st)

	aggs, err := s.agg.Aggregate(ctx, st.ID)
	if err != nil {
		return OwnerStoreView{}, err
	}
	rows, err := s.ledger.RatingsForStore(ctx, st.ID)
	if err != nil {
		return OwnerStoreView{}, err
	}
	return projectOwnerStore(st, aggs[st.ID], projectRaters(rows)), nil
}

func (s *StoreService) OwnerDeleteStore(ctx context.Context, actor domain.ActorContext, storeID uint) error {
	st, err := s.ownedStore(ctx, actor, storeID)
	if err != nil {
		return err
	}
	ok, err := s.stores.Delete(ctx, st.ID)
	if err != nil {
		return domain.Internal("delete store", err)
	}
	if !ok {
		return domain.NotFound("store")
	}
	s.notify.changed(ctx, EventStoreDeleted, actor.ID, StoreRef{ID: st.ID, Name: st.Name})
	return nil
}

// Me returns the caller's own profile. Any valid role may call it.
func (s *StoreService) Me(ctx context.Context, actor domain.ActorContext) (ProfileView, error) {
	if !actor.Valid() {
		return ProfileView{}, domain.AccessDenied()
	}
	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return ProfileView{}, domain.Internal("find user", err)
	}
	if u == nil {
		return ProfileView{}, domain.NotFound("user")
	}
	return projectProfile(u), nil
}

func (s *StoreService) ownedStore(ctx context.Context, actor domain.ActorContext, storeID uint) (*domain.Store, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	st, err := s.stores.FindOwned(ctx, storeID, actor.ID)
	if err != nil {
		return nil, domain.Internal("find store", err)
	}
	if st == nil {
		return nil, domain.NotFound("store")
	}
	return st, nil
}

func trimPatch(p *StorePatch) {
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		p.Name = &v
	}
	if p.Address != nil {
		v := strings.TrimSpace(*p.Address)
		p.Address = &v
	}
	if p.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*p.Email))
		p.Email = &v
	}
}

func storeIDs(stores []domain.Store) []uint {
	ids := make([]uint, len(stores))
	for i := range stores {
		ids[i] = stores[i].ID
	}
	return ids
}
