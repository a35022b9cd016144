package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-chat/internal/config"
)

func startEngine(t *testing.T, store Store, cfg config.PresenceConfig, wsCfg config.WebSocketConfig) *Engine {
	t.Helper()
	engine := NewEngine(store, wsCfg, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = engine.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return engine
}

func connect(t *testing.T, e *Engine, id string) *Client {
	t.Helper()
	c := e.NewClient(id, nil)
	require.NoError(t, e.Register(c))
	return c
}

func frame(event, room string) []byte {
	return []byte(fmt.Sprintf(`{"event":%q,"data":%q}`, event, room))
}

func next(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "client %s was disconnected", c.ID)
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.ID)
		return Envelope{}
	}
}

func expectCount(t *testing.T, c *Client, want int64) {
	t.Helper()
	env := next(t, c)
	require.Equal(t, EventCount, env.Event)
	var got int64
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, want, got, "count seen by %s", c.ID)
}

func expectRoomEvent(t *testing.T, c *Client, event, room string) {
	t.Helper()
	env := next(t, c)
	require.Equal(t, event, env.Event)
	var data RoomData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, room, data.Room)
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		if ok {
			t.Fatalf("client %s received unexpected frame %s", c.ID, raw)
		}
		t.Fatalf("client %s was unexpectedly disconnected", c.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func expectClosed(t *testing.T, c *Client) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-c.Send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("client %s was not disconnected", c.ID)
		}
	}
}

func TestEngine_JoinLeaveCounts(t *testing.T) {
	t.Parallel()
	e := startEngine(t, NewMemoryStore(), config.PresenceConfig{}, config.WebSocketConfig{})
	a := connect(t, e, "a")
	b := connect(t, e, "b")

	e.Dispatch(a, frame(EventJoin, "A"))
	expectCount(t, a, 1)
	expectNothing(t, a)

	e.Dispatch(a, frame(EventRequestCount, "A"))
	expectCount(t, a, 1)

	e.Dispatch(b, frame(EventJoin, "A"))
	expectCount(t, a, 2)
	expectRoomEvent(t, a, EventJoinSuccess, "A")
	expectCount(t, b, 2)
	expectNothing(t, b)

	e.Dispatch(a, frame(EventLeave, "A"))
	expectCount(t, a, 2)
	expectCount(t, b, 2)
	expectRoomEvent(t, b, EventUserLeft, "A")
	expectNothing(t, a)

	e.Dispatch(b, frame(EventRequestCount, "A"))
	expectCount(t, b, 1)
	expectNothing(t, a)
}

func TestEngine_RequestCountForEmptyRoom(t *testing.T) {
	t.Parallel()
	e := startEngine(t, NewMemoryStore(), config.PresenceConfig{}, config.WebSocketConfig{})
	a := connect(t, e, "a")

	e.Dispatch(a, frame(EventJoin, "A"))
	expectCount(t, a, 1)

	// counts are delivered to members only
	e.Dispatch(a, frame(EventRequestCount, "B"))
	expectNothing(t, a)
}

func TestEngine_SendMessageExcludesSender(t *testing.T) {
	t.Parallel()
	e := startEngine(t, NewMemoryStore(), config.PresenceConfig{}, config.WebSocketConfig{})
	a := connect(t, e, "a")
	b := connect(t, e, "b")
	outsider := connect(t, e, "c")

	e.Dispatch(a, frame(EventJoin, "A"))
	expectCount(t, a, 1)
	e.Dispatch(b, frame(EventJoin, "A"))
	expectCount(t, a, 2)
	expectRoomEvent(t, a, EventJoinSuccess, "A")
	expectCount(t, b, 2)

	e.Dispatch(a, frame(EventSendMessage, "A"))
	expectRoomEvent(t, b, EventNewMessage, "A")
	expectNothing(t, a)
	expectNothing(t, outsider)
}

func TestEngine_Disconnect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		disconnectCounts bool
		explicit         bool
	}{
		{name: "transport closed"},
		{name: "disconnect event", explicit: true},
		{name: "with room counts", disconnectCounts: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewMemoryStore()
			e := startEngine(t, store, config.PresenceConfig{DisconnectCounts: tt.disconnectCounts}, config.WebSocketConfig{})
			a := connect(t, e, "a")
			b := connect(t, e, "b")
			outsider := connect(t, e, "c")

			e.Dispatch(a, frame(EventJoin, "A"))
			expectCount(t, a, 1)
			e.Dispatch(b, frame(EventJoin, "A"))
			expectCount(t, a, 2)
			expectRoomEvent(t, a, EventJoinSuccess, "A")
			expectCount(t, b, 2)

			if tt.explicit {
				e.Dispatch(a, []byte(`{"event":"disconnect"}`))
			} else {
				e.Unregister(a)
			}

			expectClosed(t, a)
			assert.Equal(t, EventForceDC, next(t, b).Event)
			assert.Equal(t, EventForceDC, next(t, outsider).Event)
			if tt.disconnectCounts {
				expectCount(t, b, 1)
			}
			expectNothing(t, outsider)

			e.Dispatch(b, frame(EventRequestCount, "A"))
			expectCount(t, b, 1)

			// a second disconnect of the same connection is ignored
			e.Unregister(a)
			expectNothing(t, b)
		})
	}
}

func TestEngine_IgnoresMalformedEvents(t *testing.T) {
	t.Parallel()
	e := startEngine(t, NewMemoryStore(), config.PresenceConfig{}, config.WebSocketConfig{})
	a := connect(t, e, "a")

	e.Dispatch(a, frame(EventJoin, "A"))
	expectCount(t, a, 1)

	for _, raw := range []string{
		`not json`,
		`{"event":"join chatroom"}`,
		`{"event":"join chatroom","data":5}`,
		`{"event":"join chatroom","data":""}`,
		`{"event":"join chatroom","data":null}`,
		`{"event":"dance","data":"A"}`,
		`{"data":"A"}`,
	} {
		e.Dispatch(a, []byte(raw))
	}

	e.Dispatch(a, frame(EventRequestCount, "A"))
	expectCount(t, a, 1)
	expectNothing(t, a)
}

func TestEngine_ThrottlesClientEvents(t *testing.T) {
	t.Parallel()
	e := startEngine(t, NewMemoryStore(), config.PresenceConfig{EventRate: 0.001, EventBurst: 1}, config.WebSocketConfig{})
	a := connect(t, e, "a")

	e.Dispatch(a, frame(EventJoin, "A"))
	expectCount(t, a, 1)

	e.Dispatch(a, frame(EventRequestCount, "A"))
	expectNothing(t, a)
}

func TestEngine_DropsSlowConsumer(t *testing.T) {
	t.Parallel()
	e := startEngine(t, NewMemoryStore(), config.PresenceConfig{}, config.WebSocketConfig{SendBuffer: 1})
	a := connect(t, e, "a")
	b := connect(t, e, "b")

	// a never reads, so the count triggered by b overflows its buffer
	e.Dispatch(a, frame(EventJoin, "A"))
	e.Dispatch(b, frame(EventJoin, "A"))

	expectClosed(t, a)
}

func TestEngine_UnregisterAfterStop(t *testing.T) {
	t.Parallel()
	e := NewEngine(NewMemoryStore(), config.WebSocketConfig{}, config.PresenceConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(stopped)
	}()

	c := e.NewClient("a", nil)
	require.NoError(t, e.Register(c))
	cancel()
	<-stopped

	expectClosed(t, c)
	e.Unregister(c)
	e.Dispatch(c, frame(EventJoin, "A"))
	assert.ErrorIs(t, e.Register(e.NewClient("b", nil)), ErrEngineStopped)
}

func TestEngine_RedisStore(t *testing.T) {
	t.Parallel()
	store, mr := newMiniredisStore(t)
	e := startEngine(t, store, config.PresenceConfig{Store: "redis"}, config.WebSocketConfig{})
	a := connect(t, e, "a")
	b := connect(t, e, "b")

	e.Dispatch(a, frame(EventJoin, "A"))
	expectCount(t, a, 1)
	e.Dispatch(b, frame(EventJoin, "A"))
	expectCount(t, a, 2)
	expectCount(t, b, 2)

	e.Unregister(b)
	expectClosed(t, b)
	assert.Equal(t, EventJoinSuccess, next(t, a).Event)
	assert.Equal(t, EventForceDC, next(t, a).Event)

	members, err := mr.Members("test:presence:room:A:members")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, members)
}
