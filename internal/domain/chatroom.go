package domain

import "time"

// ChatRoom is a persisted room owned by its creator. Messages holds message ids.
type ChatRoom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Messages  []string  `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerID implements Owned.
func (r *ChatRoom) OwnerID() string { return r.Owner }

// CreateChatRoomRequest is the payload of POST /chatrooms.
type CreateChatRoomRequest struct {
	Name     string   `json:"name"`
	Messages []string `json:"messages"`
}
