package presence

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/weiawesome/wes-chat/internal/config"
	"github.com/weiawesome/wes-chat/pkg/log"
)

var ErrEngineStopped = errors.New("presence engine stopped")

// Engine owns every connection and its room memberships. All membership
// changes and broadcasts happen on the goroutine running Run, so events
// from one connection are applied in the order they arrived.
type Engine struct {
	store      Store
	wsCfg      config.WebSocketConfig
	cfg        config.PresenceConfig
	clients    map[string]*Client
	rooms      map[string]map[string]*Client // room -> connID -> client
	slow       []*Client
	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	done       chan struct{}
}

func NewEngine(store Store, wsCfg config.WebSocketConfig, cfg config.PresenceConfig) *Engine {
	if wsCfg.PingInterval <= 0 {
		wsCfg.PingInterval = 30 * time.Second
	}
	if wsCfg.PongWait <= 0 {
		wsCfg.PongWait = 60 * time.Second
	}
	if wsCfg.WriteWait <= 0 {
		wsCfg.WriteWait = 10 * time.Second
	}
	if wsCfg.MaxMessageSize <= 0 {
		wsCfg.MaxMessageSize = 4096
	}

	return &Engine{
		store:      store,
		wsCfg:      wsCfg,
		cfg:        cfg,
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound, 256),
		done:       make(chan struct{}),
	}
}

// NewClient builds a connection bound to this engine. conn may be nil when
// the caller drives the client through Dispatch and reads Send directly.
func (e *Engine) NewClient(id string, conn *websocket.Conn) *Client {
	buffer := e.wsCfg.SendBuffer
	if buffer <= 0 {
		buffer = 256
	}

	var limiter *rate.Limiter
	if e.cfg.EventRate > 0 {
		burst := e.cfg.EventBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(e.cfg.EventRate), burst)
	}

	return &Client{
		ID:      id,
		Send:    make(chan []byte, buffer),
		engine:  e,
		conn:    conn,
		limiter: limiter,
		rooms:   make(map[string]struct{}),
		config:  e.wsCfg,
	}
}

// Run processes engine events until ctx is cancelled. On exit every
// remaining connection is closed and its memberships are removed.
func (e *Engine) Run(ctx context.Context) error {
	l := log.L()
	l.Info().Str("store", e.cfg.Store).Bool("disconnect_counts", e.cfg.DisconnectCounts).Msg("presence engine started")

	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			l.Info().Msg("presence engine stopped")
			return nil

		case client := <-e.register:
			e.clients[client.ID] = client
			l.Debug().Str(log.FieldConnID, client.ID).Msg("client registered")

		case client := <-e.unregister:
			e.disconnect(ctx, client)

		case ev := <-e.inbound:
			e.handle(ctx, ev)
		}

		e.dropSlow(ctx)
	}
}

// Register hands a new connection to the engine.
func (e *Engine) Register(client *Client) error {
	select {
	case e.register <- client:
		return nil
	case <-e.done:
		return ErrEngineStopped
	}
}

// Unregister disconnects client. Unregistering twice is a no-op.
func (e *Engine) Unregister(client *Client) {
	select {
	case e.unregister <- client:
	case <-e.done:
	}
}

// Dispatch decodes a raw client frame and queues it. Malformed frames,
// unknown events and frames over the client's rate are dropped.
func (e *Engine) Dispatch(client *Client, raw []byte) {
	l := log.L()

	if client.limiter != nil && !client.limiter.Allow() {
		l.Debug().Str(log.FieldConnID, client.ID).Msg("client event rate exceeded, dropping event")
		return
	}

	event, room, ok := decode(raw)
	if !ok {
		l.Debug().Str(log.FieldConnID, client.ID).Int("size", len(raw)).Msg("ignoring malformed client event")
		return
	}

	select {
	case e.inbound <- inbound{client: client, event: event, room: room}:
	case <-e.done:
	}
}

func (e *Engine) handle(ctx context.Context, ev inbound) {
	c := ev.client
	if _, ok := e.clients[c.ID]; !ok {
		return
	}

	l := log.L()
	l.Debug().Str(log.FieldConnID, c.ID).Str(log.FieldEvent, ev.event).Str(log.FieldRoom, ev.room).Msg("client event")

	switch ev.event {
	case EventJoin:
		e.join(ctx, c, ev.room)
	case EventSendMessage:
		e.broadcast(ev.room, encode(EventNewMessage, RoomData{Room: ev.room}), c.ID)
	case EventLeave:
		e.leave(ctx, c, ev.room)
	case EventRequestCount:
		e.broadcastCount(ctx, ev.room)
	case EventDisconnect:
		e.disconnect(ctx, c)
	}
}

func (e *Engine) join(ctx context.Context, c *Client, room string) {
	if err := e.store.Add(ctx, room, c.ID); err != nil {
		l := log.L()
		l.Error().Err(err).Str(log.FieldConnID, c.ID).Str(log.FieldRoom, room).Msg("failed to join room")
		return
	}

	members, ok := e.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		e.rooms[room] = members
	}
	members[c.ID] = c
	c.rooms[room] = struct{}{}

	e.broadcastCount(ctx, room)
	e.broadcast(room, encode(EventJoinSuccess, RoomData{Room: room}), c.ID)
}

// leave reports the count before the leaver is removed, so the count it
// sees still includes itself.
func (e *Engine) leave(ctx context.Context, c *Client, room string) {
	e.broadcastCount(ctx, room)
	e.broadcast(room, encode(EventUserLeft, RoomData{Room: room}), c.ID)
	e.removeMember(ctx, c, room)
}

// disconnect removes client from every room it joined and tells every
// remaining connection that a user dropped.
func (e *Engine) disconnect(ctx context.Context, c *Client) {
	if _, ok := e.clients[c.ID]; !ok {
		return
	}

	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
		e.removeMember(ctx, c, room)
	}
	delete(e.clients, c.ID)
	close(c.Send)

	l := log.L()
	l.Debug().Str(log.FieldConnID, c.ID).Int("rooms", len(rooms)).Msg("client disconnected")

	forceDC := encode(EventForceDC, nil)
	for _, other := range e.clients {
		e.deliver(other, forceDC)
	}

	if e.cfg.DisconnectCounts {
		for _, room := range rooms {
			e.broadcastCount(ctx, room)
		}
	}
}

func (e *Engine) removeMember(ctx context.Context, c *Client, room string) {
	if err := e.store.Remove(ctx, room, c.ID); err != nil {
		l := log.L()
		l.Error().Err(err).Str(log.FieldConnID, c.ID).Str(log.FieldRoom, room).Msg("failed to leave room")
	}

	if members, ok := e.rooms[room]; ok {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(e.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func (e *Engine) broadcastCount(ctx context.Context, room string) {
	l := log.L()
	count, err := e.store.Count(ctx, room)
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoom, room).Msg("failed to count room members")
		return
	}
	l.Debug().Str(log.FieldRoom, room).Int64(log.FieldCount, count).Msg("room count")
	e.broadcast(room, encode(EventCount, count), "")
}

// broadcast sends data to every local member of room except exclude.
func (e *Engine) broadcast(room string, data []byte, exclude string) {
	if data == nil {
		return
	}
	for id, c := range e.rooms[room] {
		if id == exclude {
			continue
		}
		e.deliver(c, data)
	}
}

func (e *Engine) deliver(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		e.slow = append(e.slow, c)
	}
}

// dropSlow disconnects clients whose send buffer was full. Disconnecting
// one may overflow another, so it runs until no slow clients remain.
func (e *Engine) dropSlow(ctx context.Context) {
	for len(e.slow) > 0 {
		c := e.slow[0]
		e.slow = e.slow[1:]
		if _, ok := e.clients[c.ID]; !ok {
			continue
		}
		l := log.L()
		l.Warn().Str(log.FieldConnID, c.ID).Msg("client send buffer full, disconnecting")
		e.disconnect(ctx, c)
	}
}

func (e *Engine) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, c := range e.clients {
		for room := range c.rooms {
			e.removeMember(ctx, c, room)
		}
		close(c.Send)
	}
	e.clients = make(map[string]*Client)
	e.slow = nil
}
