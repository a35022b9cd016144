package domain

import "time"

// Message is a chat message owned by the user who created it.
type Message struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	ScreenName string    `json:"screen_name"`
	Owner      string    `json:"owner"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OwnerID implements Owned.
func (m *Message) OwnerID() string { return m.Owner }

// CreateMessageRequest is the payload of POST /messages. Any owner the
// client sends is not bound.
type CreateMessageRequest struct {
	Text       string `json:"text"`
	ScreenName string `json:"screen_name"`
}
