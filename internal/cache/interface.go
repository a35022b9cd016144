package cache

import (
	"context"
	"time"

	"github.com/weiawesome/wes-chat/internal/domain"
)

// PrincipalCache caches resolved principals by credential.
type PrincipalCache interface {
	Get(ctx context.Context, token string) (*domain.Principal, error)
	Set(ctx context.Context, token string, principal *domain.Principal, ttl time.Duration) error
	Delete(ctx context.Context, tokens ...string) error
	Close() error
}
