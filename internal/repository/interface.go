package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-chat/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")

	ErrUserNotFound     = fmt.Errorf("user: %w", ErrNotFound)
	ErrMessageNotFound  = fmt.Errorf("message: %w", ErrNotFound)
	ErrChatRoomNotFound = fmt.Errorf("chat room: %w", ErrNotFound)
)

// UserRepository is the identity store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	SetToken(ctx context.Context, id, token string) error
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// OwnedStore is the subset of a resource repository the mutation pipeline
// needs. Update receives column → value pairs.
type OwnedStore[T domain.Owned] interface {
	GetByID(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// MessageRepository defines persistence for messages.
type MessageRepository interface {
	OwnedStore[*domain.Message]
	Create(ctx context.Context, msg *domain.Message) error
	List(ctx context.Context) ([]domain.Message, error)
}

// ChatRoomRepository defines persistence for chat rooms.
type ChatRoomRepository interface {
	OwnedStore[*domain.ChatRoom]
	Create(ctx context.Context, room *domain.ChatRoom) error
	List(ctx context.Context) ([]domain.ChatRoom, error)
}

// translate maps driver constraint errors onto repository sentinels.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
