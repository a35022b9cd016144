package service

import (
	"context"
	"strings"

	"github.com/weiawesome/wes-chat/internal/audit"
	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/internal/repository"
	"github.com/weiawesome/wes-chat/pkg/pubsub"
)

var chatRoomFields = map[string]Field{
	"name":     {Column: "name", Kind: TextField},
	"messages": {Column: "messages", Kind: TextListField},
}

type chatRoomServiceImpl struct {
	repo      repository.ChatRoomRepository
	pipeline  *Pipeline[*domain.ChatRoom]
	publisher pubsub.Publisher
}

// NewChatRoomService creates a new chat room service.
func NewChatRoomService(repo repository.ChatRoomRepository, publisher pubsub.Publisher) ChatRoomService {
	return &chatRoomServiceImpl{
		repo:      repo,
		pipeline:  NewPipeline[*domain.ChatRoom]("chatroom", repo, chatRoomFields),
		publisher: publisher,
	}
}

func (s *chatRoomServiceImpl) List(ctx context.Context) ([]domain.ChatRoom, error) {
	return s.repo.List(ctx)
}

func (s *chatRoomServiceImpl) Get(ctx context.Context, id string) (*domain.ChatRoom, error) {
	return s.pipeline.Load(ctx, id)
}

func (s *chatRoomServiceImpl) Create(ctx context.Context, principal *domain.Principal, req *domain.CreateChatRoomRequest) (*domain.ChatRoom, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	messages := req.Messages
	if messages == nil {
		messages = []string{}
	}

	room := &domain.ChatRoom{
		Name:     req.Name,
		Owner:    principal.ID,
		Messages: messages,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, mapStoreError(err)
	}

	audit.LogResource(ctx, audit.ActionChatRoomCreate, principal.ID, room.ID, "chat room created")
	publish(ctx, s.publisher, pubsub.ChannelChatRooms, pubsub.EventChatRoomCreated, room.ID, principal.ID, room)
	return room, nil
}

func (s *chatRoomServiceImpl) Update(ctx context.Context, principal *domain.Principal, id string, patch Patch) error {
	applied, err := s.pipeline.Update(ctx, principal, id, patch)
	if err != nil {
		return err
	}

	audit.LogResource(ctx, audit.ActionChatRoomUpdate, principal.ID, id, "chat room updated")
	publish(ctx, s.publisher, pubsub.ChannelChatRooms, pubsub.EventChatRoomUpdated, id, principal.ID, applied)
	return nil
}

func (s *chatRoomServiceImpl) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	if err := s.pipeline.Delete(ctx, principal, id); err != nil {
		return err
	}

	audit.LogResource(ctx, audit.ActionChatRoomDelete, principal.ID, id, "chat room deleted")
	publish(ctx, s.publisher, pubsub.ChannelChatRooms, pubsub.EventChatRoomDeleted, id, principal.ID, nil)
	return nil
}
