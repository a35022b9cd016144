package presence

import "encoding/json"

// Events from client.
const (
	EventJoin         = "join chatroom"
	EventSendMessage  = "send chat message"
	EventLeave        = "leave chatroom"
	EventRequestCount = "request count"
	EventDisconnect   = "disconnect"
)

// Events to client.
const (
	EventCount       = "count"
	EventJoinSuccess = "join success"
	EventNewMessage  = "new chat message"
	EventUserLeft    = "user left chatroom"
	EventForceDC     = "user force dc"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomData is the payload of room scoped notifications.
type RoomData struct {
	Room string `json:"room"`
}

// inbound is a decoded client event waiting for the engine.
type inbound struct {
	client *Client
	event  string
	room   string
}

// decode parses a client frame. Frames that are not an envelope, carry an
// unknown event or lack a non-empty string room are rejected.
func decode(raw []byte) (event, room string, ok bool) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", "", false
	}

	switch env.Event {
	case EventDisconnect:
		return env.Event, "", true
	case EventJoin, EventSendMessage, EventLeave, EventRequestCount:
	default:
		return "", "", false
	}

	if len(env.Data) == 0 {
		return "", "", false
	}
	if err := json.Unmarshal(env.Data, &room); err != nil || room == "" {
		return "", "", false
	}
	return env.Event, room, true
}

func encode(event string, data interface{}) []byte {
	env := Envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil
		}
		env.Data = raw
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil
	}
	return out
}
