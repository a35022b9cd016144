package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/internal/repository"
	"github.com/weiawesome/wes-chat/pkg/pubsub"
)

func newMessageService(t *testing.T) (MessageService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	repo := repository.NewGormMessageRepository(newTestDB(t))
	return NewMessageService(repo, pub), pub
}

func TestMessageService_CreateStampsOwner(t *testing.T) {
	t.Parallel()
	svc, pub := newMessageService(t)

	var req domain.CreateMessageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"text":"hi","owner":"u-2"}`), &req))

	msg, err := svc.Create(context.Background(), alice, &req)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, msg.Owner)
	assert.Equal(t, "alice", msg.ScreenName)
	assert.Equal(t, []string{pubsub.EventMessageCreated}, pub.types())
}

func TestMessageService_CreateRequiresText(t *testing.T) {
	t.Parallel()
	svc, pub := newMessageService(t)

	_, err := svc.Create(context.Background(), alice, &domain.CreateMessageRequest{Text: "  "})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Empty(t, pub.types())
}

func TestMessageService_Lifecycle(t *testing.T) {
	t.Parallel()
	svc, pub := newMessageService(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, alice, &domain.CreateMessageRequest{Text: "hello", ScreenName: "al"})
	require.NoError(t, err)

	err = svc.Update(ctx, bob, msg.ID, Patch{"text": "x", "owner": bob.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := svc.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, alice.ID, got.Owner)

	require.NoError(t, svc.Update(ctx, alice, msg.ID, Patch{"text": "edited", "screen_name": "", "owner": bob.ID}))
	got, err = svc.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, "al", got.ScreenName)
	assert.Equal(t, alice.ID, got.Owner)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, svc.Delete(ctx, bob, msg.ID), domain.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, alice, msg.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice, msg.ID), domain.ErrNotFound)

	_, err = svc.Get(ctx, msg.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []string{
		pubsub.EventMessageCreated,
		pubsub.EventMessageUpdated,
		pubsub.EventMessageDeleted,
	}, pub.types())
}

func TestChatRoomService_Lifecycle(t *testing.T) {
	t.Parallel()
	pub := &recordingPublisher{}
	svc := NewChatRoomService(repository.NewGormChatRoomRepository(newTestDB(t)), pub)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, &domain.CreateChatRoomRequest{})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	room, err := svc.Create(ctx, alice, &domain.CreateChatRoomRequest{Name: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, room.Owner)
	assert.Equal(t, []string{}, room.Messages)

	require.NoError(t, svc.Update(ctx, alice, room.ID, Patch{"messages": []interface{}{"m-1"}, "name": ""}))
	got, err := svc.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "lobby", got.Name)
	assert.Equal(t, []string{"m-1"}, got.Messages)

	err = svc.Update(ctx, alice, room.ID, Patch{"messages": "m-2"})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	assert.ErrorIs(t, svc.Update(ctx, bob, room.ID, Patch{"name": "mine"}), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, bob, "missing"), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, alice, room.ID))

	rooms, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	assert.Equal(t, []string{
		pubsub.EventChatRoomCreated,
		pubsub.EventChatRoomUpdated,
		pubsub.EventChatRoomDeleted,
	}, pub.types())
}
