package auth

import "github.com/weiawesome/wes-chat/internal/domain"

// RequireOwnership fails with domain.ErrForbidden unless principal is the
// recorded owner of resource. The resource must already be loaded.
func RequireOwnership(principal *domain.Principal, resource domain.Owned) error {
	if principal == nil {
		return domain.ErrUnauthenticated
	}
	owner := resource.OwnerID()
	if owner == "" || owner != principal.ID {
		return domain.ErrForbidden
	}
	return nil
}
