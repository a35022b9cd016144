package service

import (
	"context"

	"github.com/weiawesome/wes-chat/internal/domain"
)

// MessageService defines message business logic.
type MessageService interface {
	List(ctx context.Context) ([]domain.Message, error)
	Get(ctx context.Context, id string) (*domain.Message, error)
	Create(ctx context.Context, principal *domain.Principal, req *domain.CreateMessageRequest) (*domain.Message, error)
	Update(ctx context.Context, principal *domain.Principal, id string, patch Patch) error
	Delete(ctx context.Context, principal *domain.Principal, id string) error
}

// ChatRoomService defines chat room business logic.
type ChatRoomService interface {
	List(ctx context.Context) ([]domain.ChatRoom, error)
	Get(ctx context.Context, id string) (*domain.ChatRoom, error)
	Create(ctx context.Context, principal *domain.Principal, req *domain.CreateChatRoomRequest) (*domain.ChatRoom, error)
	Update(ctx context.Context, principal *domain.Principal, id string, patch Patch) error
	Delete(ctx context.Context, principal *domain.Principal, id string) error
}

// UserService is the in-process identity provider.
type UserService interface {
	SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.UserResponse, error)
	SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.SignInResponse, error)
	ChangePassword(ctx context.Context, principal *domain.Principal, token string, req *domain.ChangePasswordRequest) error
	SignOut(ctx context.Context, principal *domain.Principal, token string) error
}
