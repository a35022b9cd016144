package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weiawesome/wes-chat/internal/domain"
)

func TestRequireOwnership(t *testing.T) {
	t.Parallel()

	owner := &domain.Principal{ID: "u-1", ScreenName: "alice"}
	other := &domain.Principal{ID: "u-2", ScreenName: "alice"}

	tests := []struct {
		name      string
		principal *domain.Principal
		resource  domain.Owned
		want      error
	}{
		{name: "owner", principal: owner, resource: &domain.Message{Owner: "u-1"}, want: nil},
		{name: "same screen name is not ownership", principal: other, resource: &domain.Message{Owner: "u-1"}, want: domain.ErrForbidden},
		{name: "chat room owner", principal: owner, resource: &domain.ChatRoom{Owner: "u-1"}, want: nil},
		{name: "ownerless resource", principal: owner, resource: &domain.ChatRoom{}, want: domain.ErrForbidden},
		{name: "no principal", principal: nil, resource: &domain.Message{Owner: "u-1"}, want: domain.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := RequireOwnership(tt.principal, tt.resource)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
