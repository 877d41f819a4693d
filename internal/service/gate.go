package service

import "store-rating/internal/domain"

// RequireAdmin guards global listings, user management, store deletion and the summary.
func RequireAdmin(a domain.ActorContext) error {
	if !a.Valid() || a.Role != domain.RoleAdmin {
		return domain.AccessDenied()
	}
	return nil
}

// RequireOwner guards store management. Lookups behind it must still be scoped by owner id.
func RequireOwner(a domain.ActorContext) error {
	if !a.Valid() || a.Role != domain.RoleOwner {
		return domain.AccessDenied()
	}
	return nil
}

// RequireRater guards browsing and rating. Admins audit but do not rate.
func RequireRater(a domain.ActorContext) error {
	if !a.Valid() || (a.Role != domain.RoleUser && a.Role != domain.RoleOwner) {
		return domain.AccessDenied()
	}
	return nil
}

// BrowseScope is the store visibility for the browse listing: owners see their own stores,
// everyone else sees every owned store.
func BrowseScope(a domain.ActorContext) domain.StoreScope {
	if a.Role == domain.RoleOwner {
		id := a.ID
		return domain.StoreScope{OwnerID: &id}
	}
	return domain.StoreScope{OwnedOnly: true}
}
