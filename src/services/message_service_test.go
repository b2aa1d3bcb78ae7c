package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/careernest/Backend-CareerNest/src/apperr"
	"github.com/careernest/Backend-CareerNest/src/logging"
	"github.com/careernest/Backend-CareerNest/src/models"
)

type messageFixture struct {
	service     *MessageService
	connections *ConnectionService
	messages    *fakeMessageRepo
	delivery    *fakeDelivery
	alice       *models.User
	bob         *models.User
	carol       *models.User
}

func newMessageFixture() *messageFixture {
	alice := &models.User{Id: primitive.NewObjectID(), Name: "Alice", Username: "alice"}
	bob := &models.User{Id: primitive.NewObjectID(), Name: "Bob", Username: "bob"}
	carol := &models.User{Id: primitive.NewObjectID(), Name: "Carol", Username: "carol"}

	users := newFakeUserRepo(alice, bob, carol)
	connectionRepo := &fakeConnectionRepo{}
	messageRepo := &fakeMessageRepo{}
	notificationRepo := &fakeNotificationRepo{}
	delivery := &fakeDelivery{}
	logger := logging.Nop()

	notifier := NewNotificationService(notificationRepo, logger)
	connections := NewConnectionService(connectionRepo, users, notifier, delivery, logger)
	service := NewMessageService(messageRepo, connectionRepo, users, notifier, delivery, logger)

	return &messageFixture{
		service:     service,
		connections: connections,
		messages:    messageRepo,
		delivery:    delivery,
		alice:       alice,
		bob:         bob,
		carol:       carol,
	}
}

func (f *messageFixture) connect(t *testing.T, a, b *models.User) {
	t.Helper()
	conn, err := f.connections.Propose(context.Background(), a.Id, b.Id, "")
	require.NoError(t, err)
	_, err = f.connections.Accept(context.Background(), b.Id, conn.Id)
	require.NoError(t, err)
}

func TestSendRequiresAcceptedConnection(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	// Sin ninguna relación previa
	_, err := f.service.Send(ctx, f.alice.Id, f.bob.Id, "hello", primitive.NilObjectID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeNotConnected, appErr.Code)

	// Con solicitud pendiente tampoco
	_, err = f.connections.Propose(ctx, f.alice.Id, f.bob.Id, "")
	require.NoError(t, err)
	_, err = f.service.Send(ctx, f.alice.Id, f.bob.Id, "hello", primitive.NilObjectID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestSendDeliversToBothParties(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)

	msg, err := f.service.Send(ctx, f.alice.Id, f.bob.Id, "hello Bob", primitive.NilObjectID)
	require.NoError(t, err)

	assert.False(t, msg.IsRead)
	assert.Equal(t, "hello Bob", msg.Text)

	assert.Contains(t, f.delivery.eventsFor(f.bob.Id.Hex()), EventNewMessage)
	assert.Contains(t, f.delivery.eventsFor(f.alice.Id.Hex()), EventMessageSent)
}

func TestSendValidation(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)

	_, err := f.service.Send(ctx, f.alice.Id, f.alice.Id, "hi", primitive.NilObjectID)
	assert.True(t, apperr.IsKind(err, apperr.KindSelfReference))

	_, err = f.service.Send(ctx, f.alice.Id, f.bob.Id, "   ", primitive.NilObjectID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.service.Send(ctx, f.alice.Id, f.bob.Id, strings.Repeat("a", models.MaxMessageLength+1), primitive.NilObjectID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.service.Send(ctx, f.alice.Id, primitive.NewObjectID(), "hi", primitive.NilObjectID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestThreadMarksFetchedMessagesRead(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.service.Send(ctx, f.alice.Id, f.bob.Id, text, primitive.NilObjectID)
		require.NoError(t, err)
	}

	result, err := f.service.Thread(ctx, f.bob.Id, f.alice.Id, 1, 50)
	require.NoError(t, err)
	require.Len(t, result.Messages, 3)

	// Los mensajes devueltos ya aparecen leídos
	for _, m := range result.Messages {
		assert.True(t, m.IsRead)
	}

	// Y un único recibo agrupado para el emisor
	readEvents := 0
	for _, event := range f.delivery.eventsFor(f.alice.Id.Hex()) {
		if event == EventMessagesRead {
			readEvents++
		}
	}
	assert.Equal(t, 1, readEvents)

	unread, err := f.service.UnreadCount(ctx, f.bob.Id)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestThreadRequiresConnection(t *testing.T) {
	f := newMessageFixture()

	_, err := f.service.Thread(context.Background(), f.alice.Id, f.bob.Id, 1, 50)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestThreadSecondFetchSendsNoReceipt(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)

	_, err := f.service.Send(ctx, f.alice.Id, f.bob.Id, "hello", primitive.NilObjectID)
	require.NoError(t, err)

	_, err = f.service.Thread(ctx, f.bob.Id, f.alice.Id, 1, 50)
	require.NoError(t, err)
	before := len(f.delivery.eventsFor(f.alice.Id.Hex()))

	_, err = f.service.Thread(ctx, f.bob.Id, f.alice.Id, 1, 50)
	require.NoError(t, err)

	assert.Equal(t, before, len(f.delivery.eventsFor(f.alice.Id.Hex())))
}

func TestConversationsSortedByActivity(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)
	f.connect(t, f.alice, f.carol)

	_, err := f.service.Send(ctx, f.alice.Id, f.bob.Id, "to bob", primitive.NilObjectID)
	require.NoError(t, err)
	_, err = f.service.Send(ctx, f.carol.Id, f.alice.Id, "from carol", primitive.NilObjectID)
	require.NoError(t, err)

	result, err := f.service.Conversations(ctx, f.alice.Id, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Conversations, 2)

	// La conversación con Carol es la más reciente
	assert.Equal(t, f.carol.Id, result.Conversations[0].UserId)
	assert.Equal(t, int64(1), result.Conversations[0].UnreadCount)
	require.NotNil(t, result.Conversations[0].LastMessage)
	assert.Equal(t, "from carol", result.Conversations[0].LastMessage.Text)

	assert.Equal(t, f.bob.Id, result.Conversations[1].UserId)
	assert.Zero(t, result.Conversations[1].UnreadCount)
}

func TestConversationsWithoutMessagesSinkToEnd(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)
	f.connect(t, f.alice, f.carol)

	_, err := f.service.Send(ctx, f.carol.Id, f.alice.Id, "hola", primitive.NilObjectID)
	require.NoError(t, err)

	result, err := f.service.Conversations(ctx, f.alice.Id, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Conversations, 2)

	assert.Equal(t, f.carol.Id, result.Conversations[0].UserId)
	assert.Nil(t, result.Conversations[1].LastMessage)
}

func TestMarkReadOnlyByReceiver(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)

	msg, err := f.service.Send(ctx, f.alice.Id, f.bob.Id, "hello", primitive.NilObjectID)
	require.NoError(t, err)

	_, err = f.service.MarkRead(ctx, f.alice.Id, msg.Id)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	updated, err := f.service.MarkRead(ctx, f.bob.Id, msg.Id)
	require.NoError(t, err)
	assert.True(t, updated.IsRead)

	// El emisor recibe el recibo de lectura
	assert.Contains(t, f.delivery.eventsFor(f.alice.Id.Hex()), EventMessageRead)

	// Repetirlo es idempotente y no reenvía el recibo
	before := len(f.delivery.eventsFor(f.alice.Id.Hex()))
	_, err = f.service.MarkRead(ctx, f.bob.Id, msg.Id)
	require.NoError(t, err)
	assert.Equal(t, before, len(f.delivery.eventsFor(f.alice.Id.Hex())))
}

func TestMarkAllRead(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)

	for i := 0; i < 3; i++ {
		_, err := f.service.Send(ctx, f.alice.Id, f.bob.Id, "ping", primitive.NilObjectID)
		require.NoError(t, err)
	}

	modified, err := f.service.MarkAllRead(ctx, f.bob.Id, f.alice.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), modified)

	// Sin pendientes la segunda pasada no empuja nada
	before := len(f.delivery.eventsFor(f.alice.Id.Hex()))
	modified, err = f.service.MarkAllRead(ctx, f.bob.Id, f.alice.Id)
	require.NoError(t, err)
	assert.Zero(t, modified)
	assert.Equal(t, before, len(f.delivery.eventsFor(f.alice.Id.Hex())))
}

func TestDeleteOnlyBySender(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)

	msg, err := f.service.Send(ctx, f.alice.Id, f.bob.Id, "oops", primitive.NilObjectID)
	require.NoError(t, err)

	err = f.service.Delete(ctx, f.bob.Id, msg.Id)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, f.service.Delete(ctx, f.alice.Id, msg.Id))
	assert.Empty(t, f.messages.messages)
	assert.Contains(t, f.delivery.eventsFor(f.bob.Id.Hex()), EventMessageDeleted)

	err = f.service.Delete(ctx, f.alice.Id, msg.Id)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestSearchScopedToParticipant(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.connect(t, f.alice, f.bob)
	f.connect(t, f.bob, f.carol)

	_, err := f.service.Send(ctx, f.alice.Id, f.bob.Id, "project kickoff tomorrow", primitive.NilObjectID)
	require.NoError(t, err)
	_, err = f.service.Send(ctx, f.bob.Id, f.carol.Id, "project review friday", primitive.NilObjectID)
	require.NoError(t, err)

	result, err := f.service.Search(ctx, f.alice.Id, "project", 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, "project kickoff tomorrow", result.Messages[0].Text)

	_, err = f.service.Search(ctx, f.alice.Id, "   ", 1, 20)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
