package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-chat/pkg/database"
)

// UserModel is the GORM model for users table.
type UserModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	ScreenName   string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Token        string    `gorm:"type:varchar(512);index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Email:        m.Email,
		ScreenName:   m.ScreenName,
		PasswordHash: m.PasswordHash,
		Token:        m.Token,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		ScreenName:   u.ScreenName,
		PasswordHash: u.PasswordHash,
		Token:        u.Token,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// MessageModel is the GORM model for messages table.
type MessageModel struct {
	ID         string         `gorm:"type:varchar(36);primaryKey"`
	Text       string         `gorm:"type:text;not null"`
	ScreenName string         `gorm:"type:varchar(100);not null"`
	Owner      string         `gorm:"type:varchar(36);index;not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:         m.ID,
		Text:       m.Text,
		ScreenName: m.ScreenName,
		Owner:      m.Owner,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// MessageToModel converts domain Message to MessageModel.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:         msg.ID,
		Text:       msg.Text,
		ScreenName: msg.ScreenName,
		Owner:      msg.Owner,
		CreatedAt:  msg.CreatedAt,
		UpdatedAt:  msg.UpdatedAt,
	}
}

// ChatRoomModel is the GORM model for chat_rooms table.
type ChatRoomModel struct {
	ID        string               `gorm:"type:varchar(36);primaryKey"`
	Name      string               `gorm:"type:varchar(200);not null"`
	Owner     string               `gorm:"type:varchar(36);index;not null"`
	Messages  database.StringArray `gorm:"type:text"`
	CreatedAt time.Time            `gorm:"autoCreateTime"`
	UpdatedAt time.Time            `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt       `gorm:"index"`
}

// TableName specifies the table name for ChatRoomModel.
func (ChatRoomModel) TableName() string {
	return "chat_rooms"
}

// ToDomain converts ChatRoomModel to domain ChatRoom.
func (m *ChatRoomModel) ToDomain() *ChatRoom {
	messages := []string(m.Messages)
	if messages == nil {
		messages = []string{}
	}
	return &ChatRoom{
		ID:        m.ID,
		Name:      m.Name,
		Owner:     m.Owner,
		Messages:  messages,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ChatRoomToModel converts domain ChatRoom to ChatRoomModel.
func ChatRoomToModel(r *ChatRoom) *ChatRoomModel {
	return &ChatRoomModel{
		ID:        r.ID,
		Name:      r.Name,
		Owner:     r.Owner,
		Messages:  database.StringArray(r.Messages),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Models lists every GORM model for auto-migration.
func Models() []interface{} {
	return []interface{}{&UserModel{}, &MessageModel{}, &ChatRoomModel{}}
}
