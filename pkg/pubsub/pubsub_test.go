package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelToTopic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		channel string
		topic   string
		wantErr bool
	}{
		{channel: ChannelMessages, topic: "chat-messages"},
		{channel: ChannelChatRooms, topic: "chat-chatrooms"},
		{channel: "single", topic: "single"},
		{channel: "chat::messages", wantErr: true},
		{channel: "", wantErr: true},
	}

	for _, tt := range tests {
		topic, err := channelToTopic(tt.channel)
		if tt.wantErr {
			assert.Error(t, err, tt.channel)
			continue
		}
		require.NoError(t, err, tt.channel)
		assert.Equal(t, tt.topic, topic)
	}
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	evt, err := NewEvent(EventMessageCreated, "m-1", "u-1", map[string]string{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, EventMessageCreated, evt.Type)
	assert.False(t, evt.Timestamp.IsZero())

	var payload map[string]string
	require.NoError(t, evt.UnmarshalPayload(&payload))
	assert.Equal(t, "hi", payload["text"])

	bare, err := NewEvent(EventMessageDeleted, "m-1", "u-1", nil)
	require.NoError(t, err)
	assert.Nil(t, bare.Payload)
}

func TestNewPublisher_Drivers(t *testing.T) {
	t.Parallel()

	p, err := NewPublisher(Config{Driver: "none"})
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), ChannelMessages, &Event{}))

	_, err = NewPublisher(Config{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestRedisPublisher_Publish(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	pub, err := NewPublisher(Config{Driver: "redis", Redis: RedisConfig{Address: mr.Addr()}})
	require.NoError(t, err)
	defer pub.Close()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps := sub.Subscribe(ctx, ChannelMessages)
	defer ps.Close()
	_, err = ps.Receive(ctx)
	require.NoError(t, err)

	evt, err := NewEvent(EventMessageUpdated, "m-1", "u-1", nil)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(ctx, ChannelMessages, evt))

	msg, err := ps.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, EventMessageUpdated, got.Type)
	assert.Equal(t, "m-1", got.ResourceID)
	assert.Equal(t, "u-1", got.ActorID)
}

func TestNewRedisPublisher_Unreachable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisPublisher(RedisConfig{Address: addr})
	assert.Error(t, err)
}
