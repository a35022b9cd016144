package presence

import "context"

// Store tracks which connections are members of which rooms. Room names
// are opaque and need not match any persisted chat room.
type Store interface {
	// Add makes connID a member of room. Adding twice is a no-op.
	Add(ctx context.Context, room, connID string) error

	// Remove drops connID from room. Removing a non-member is a no-op.
	Remove(ctx context.Context, room, connID string) error

	// Count returns the number of members of room, 0 for unknown rooms.
	Count(ctx context.Context, room string) (int64, error)

	Close() error
}
