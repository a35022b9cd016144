package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/pkg/log"
)

// GormChatRoomRepository implements ChatRoomRepository using GORM.
type GormChatRoomRepository struct {
	db *gorm.DB
}

// NewGormChatRoomRepository creates a new GORM-based chat room repository.
func NewGormChatRoomRepository(db *gorm.DB) *GormChatRoomRepository {
	return &GormChatRoomRepository{db: db}
}

// Create creates a new chat room.
func (r *GormChatRoomRepository) Create(ctx context.Context, room *domain.ChatRoom) error {
	l := log.Ctx(ctx)

	room.ID = uuid.New().String()

	model := domain.ChatRoomToModel(room)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Msg("failed to create chat room in db")
		return translate(err)
	}

	room.CreatedAt = model.CreatedAt
	room.UpdatedAt = model.UpdatedAt
	l.Debug().Str(log.FieldResourceID, room.ID).Msg("chat room created in db")
	return nil
}

// GetByID retrieves a chat room by ID.
func (r *GormChatRoomRepository) GetByID(ctx context.Context, id string) (*domain.ChatRoom, error) {
	var model domain.ChatRoomModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrChatRoomNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldResourceID, id).Msg("failed to get chat room by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List returns every chat room, oldest first.
func (r *GormChatRoomRepository) List(ctx context.Context) ([]domain.ChatRoom, error) {
	var models []domain.ChatRoomModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list chat rooms from db")
		return nil, err
	}

	rooms := make([]domain.ChatRoom, len(models))
	for i, model := range models {
		rooms[i] = *model.ToDomain()
	}
	return rooms, nil
}

// Update applies a partial update to a chat room.
func (r *GormChatRoomRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&domain.ChatRoomModel{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldResourceID, id).Msg("failed to update chat room in db")
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatRoomNotFound
	}
	return nil
}

// Delete removes a chat room.
func (r *GormChatRoomRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.ChatRoomModel{}, "id = ?", id)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldResourceID, id).Msg("failed to delete chat room in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChatRoomNotFound
	}
	return nil
}
