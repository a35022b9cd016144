package pubsub

// Channels, in redis notation. The kafka driver maps "a:b" to topic "a-b".
const (
	ChannelMessages  = "chat:messages"
	ChannelChatRooms = "chat:chatrooms"
)

// Event types for message resources.
const (
	EventMessageCreated = "message.created"
	EventMessageUpdated = "message.updated"
	EventMessageDeleted = "message.deleted"
)

// Event types for chat room resources.
const (
	EventChatRoomCreated = "chatroom.created"
	EventChatRoomUpdated = "chatroom.updated"
	EventChatRoomDeleted = "chatroom.deleted"
)

// Channels lists every channel the service publishes on.
func Channels() []string {
	return []string{ChannelMessages, ChannelChatRooms}
}
