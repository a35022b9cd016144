package service

import (
	"context"
	"strings"

	"github.com/weiawesome/wes-chat/internal/audit"
	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/internal/repository"
	"github.com/weiawesome/wes-chat/pkg/pubsub"
)

// messageFields are the fields a message update may change.
var messageFields = map[string]Field{
	"text":        {Column: "text", Kind: TextField},
	"screen_name": {Column: "screen_name", Kind: TextField},
}

// messageServiceImpl implements MessageService interface.
type messageServiceImpl struct {
	repo      repository.MessageRepository
	pipeline  *Pipeline[*domain.Message]
	publisher pubsub.Publisher
}

// NewMessageService creates a new message service.
func NewMessageService(repo repository.MessageRepository, publisher pubsub.Publisher) MessageService {
	return &messageServiceImpl{
		repo:      repo,
		pipeline:  NewPipeline[*domain.Message]("message", repo, messageFields),
		publisher: publisher,
	}
}

// List returns every message.
func (s *messageServiceImpl) List(ctx context.Context) ([]domain.Message, error) {
	return s.repo.List(ctx)
}

// Get retrieves a message by ID.
func (s *messageServiceImpl) Get(ctx context.Context, id string) (*domain.Message, error) {
	return s.pipeline.Load(ctx, id)
}

// Create stores a new message owned by principal.
func (s *messageServiceImpl) Create(ctx context.Context, principal *domain.Principal, req *domain.CreateMessageRequest) (*domain.Message, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.NewValidationError("text", "is required")
	}

	screenName := req.ScreenName
	if screenName == "" {
		screenName = principal.ScreenName
	}

	msg := &domain.Message{
		Text:       req.Text,
		ScreenName: screenName,
		Owner:      principal.ID,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, mapStoreError(err)
	}

	audit.LogResource(ctx, audit.ActionMessageCreate, principal.ID, msg.ID, "message created")
	publish(ctx, s.publisher, pubsub.ChannelMessages, pubsub.EventMessageCreated, msg.ID, principal.ID, msg)
	return msg, nil
}

// Update applies a partial update to a message owned by principal.
func (s *messageServiceImpl) Update(ctx context.Context, principal *domain.Principal, id string, patch Patch) error {
	applied, err := s.pipeline.Update(ctx, principal, id, patch)
	if err != nil {
		return err
	}

	audit.LogResource(ctx, audit.ActionMessageUpdate, principal.ID, id, "message updated")
	publish(ctx, s.publisher, pubsub.ChannelMessages, pubsub.EventMessageUpdated, id, principal.ID, applied)
	return nil
}

// Delete removes a message owned by principal.
func (s *messageServiceImpl) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	if err := s.pipeline.Delete(ctx, principal, id); err != nil {
		return err
	}

	audit.LogResource(ctx, audit.ActionMessageDelete, principal.ID, id, "message deleted")
	publish(ctx, s.publisher, pubsub.ChannelMessages, pubsub.EventMessageDeleted, id, principal.ID, nil)
	return nil
}
