package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/internal/infrastructure/ratelimit"
	"tijuanashop/pkg/errors"
)

type chatFixture struct {
	uc       *ChatUseCase
	chats    *fakeChatRepo
	users    *fakeUserRepo
	products *fakeProductRepo
	limiter  *ratelimit.RateLimiter
	rec      *recorder
}

func newChatFixture(chats ...*entity.Chat) *chatFixture {
	f := &chatFixture{
		chats: newFakeChatRepo(chats...),
		users: newFakeUserRepo(
			&entity.User{ID: "buyer", Name: "Luis", Avatar: "https://picsum.photos/seed/buyer/400/400"},
			&entity.User{ID: "seller", Name: "Ana", Avatar: "https://picsum.photos/seed/seller/400/400"},
		),
		products: newFakeProductRepo(listing("p1", "Laptop", "seller", 0), listing("p2", "Tablet", "seller", time.Minute)),
		limiter:  ratelimit.NewRateLimiter(),
	}
	var em *events.Emitter
	em, f.rec = newRecordingEmitter()
	f.uc = NewChatUseCase(f.chats, f.users, f.products, nil, f.limiter, em)
	return f
}

func TestChatKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, ChatKey("a", "b", "p"), ChatKey("b", "a", "p"))
	assert.NotEqual(t, ChatKey("a", "b", "p"), ChatKey("a", "b", "q"))
	assert.NotEqual(t, ChatKey("ab", "c", "p"), ChatKey("a", "bc", "p"))
}

func TestGetOrCreateChat_SequentialCallsReturnSameChat(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	first, err := f.uc.GetOrCreateChat(ctx, "buyer", "seller", "p1")
	require.NoError(t, err)
	second, err := f.uc.GetOrCreateChat(ctx, "buyer", "seller", "p1")
	require.NoError(t, err)
	reverse, err := f.uc.GetOrCreateChat(ctx, "seller", "buyer", "p1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, reverse)
	assert.Equal(t, 1, f.chats.count())

	chat, err := f.chats.GetByID(ctx, first)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"buyer", "seller"}, chat.Participants)
	assert.Equal(t, "Ana", chat.ParticipantDetails["seller"].Name)
	assert.Equal(t, "Laptop", chat.ProductTitle)
	assert.Equal(t, "https://picsum.photos/seed/p1/600/400", chat.ProductImage)
}

func TestGetOrCreateChat_ConcurrentCallsCreateOneChat(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "buyer", "seller"
			if i%2 == 1 {
				a, b = b, a
			}
			id, err := f.uc.GetOrCreateChat(ctx, a, b, "p1")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, f.chats.count())
}

func TestGetOrCreateChat_LegacyDuplicatesResolveToLowestID(t *testing.T) {
	legacy := func(id string) *entity.Chat {
		return &entity.Chat{ID: id, Participants: []string{"seller", "buyer"}, ProductID: "p1"}
	}
	f := newChatFixture(legacy("zz9"), legacy("Ab3"), legacy("m42"))

	id, err := f.uc.GetOrCreateChat(context.Background(), "buyer", "seller", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ab3", id)
	assert.Equal(t, 3, f.chats.count())
}

func TestGetOrCreateChat_Validation(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.uc.GetOrCreateChat(ctx, "buyer", "buyer", "p1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.uc.GetOrCreateChat(ctx, "buyer", "", "p1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestGetOrCreateChat_MissingRecordsAbortBeforeWrite(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.uc.GetOrCreateChat(ctx, "buyer", "ghost", "p1")
	assert.True(t, errors.Is(err, "PRECONDITION_FAILED"))

	_, err = f.uc.GetOrCreateChat(ctx, "buyer", "seller", "gone")
	assert.True(t, errors.Is(err, "PRECONDITION_FAILED"))

	assert.Equal(t, 0, f.chats.count())
}

func TestGetOrCreateChat_WriteFailureIsReportedAndReturned(t *testing.T) {
	f := newChatFixture()
	key := ChatKey("buyer", "seller", "p1")
	f.chats.CreateErr = storeErr(codes.PermissionDenied, "chats/"+key, events.OpCreate)

	_, err := f.uc.GetOrCreateChat(context.Background(), "buyer", "seller", "p1")
	assert.True(t, errors.Is(err, "PERMISSION_DENIED"))

	names, evs := f.rec.all()
	require.Equal(t, []string{events.PermissionError}, names)
	assert.Equal(t, "chats/"+key, evs[0].Path)
	assert.Equal(t, events.OpCreate, evs[0].Operation)
	assert.Equal(t, "buyer", evs[0].UserID)
}

func TestGetOrCreateChat_RateLimitsNewChatsOnly(t *testing.T) {
	f := newChatFixture()
	f.limiter.SetLimit(ratelimit.ActionContactSeller, ratelimit.Limit{Burst: 1, Every: time.Hour})
	ctx := context.Background()

	first, err := f.uc.GetOrCreateChat(ctx, "buyer", "seller", "p1")
	require.NoError(t, err)

	again, err := f.uc.GetOrCreateChat(ctx, "buyer", "seller", "p1")
	require.NoError(t, err, "reopening an existing chat is not limited")
	assert.Equal(t, first, again)

	_, err = f.uc.GetOrCreateChat(ctx, "buyer", "seller", "p2")
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}

func TestContactSeller(t *testing.T) {
	f := newChatFixture()

	id, err := f.uc.ContactSeller(context.Background(), "buyer", "p2")
	require.NoError(t, err)
	assert.Equal(t, ChatKey("buyer", "seller", "p2"), id)

	_, err = f.uc.ContactSeller(context.Background(), "seller", "p2")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendMessage(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	chatID, err := f.uc.GetOrCreateChat(ctx, "buyer", "seller", "p1")
	require.NoError(t, err)

	msg, err := f.uc.SendMessage(ctx, "buyer", chatID, "  ¿Sigue disponible?  ")
	require.NoError(t, err)
	assert.Equal(t, "¿Sigue disponible?", msg.Text)
	assert.Equal(t, "buyer", msg.SenderID)
	assert.False(t, msg.Timestamp.IsZero())

	chat, err := f.uc.GetChat(ctx, "seller", chatID)
	require.NoError(t, err)
	require.NotNil(t, chat.LastMessage)
	assert.Equal(t, "¿Sigue disponible?", chat.LastMessage.Text)

	_, err = f.uc.SendMessage(ctx, "buyer", chatID, "   ")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.uc.SendMessage(ctx, "intruder", chatID, "hola")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = f.uc.GetChat(ctx, "intruder", chatID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	messages, err := f.uc.ListMessages(ctx, "seller", chatID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
}

func TestSendMessage_RateLimited(t *testing.T) {
	f := newChatFixture()
	f.limiter.SetLimit(ratelimit.ActionSendMessage, ratelimit.Limit{Burst: 2, Every: time.Hour})
	ctx := context.Background()
	chatID, err := f.uc.GetOrCreateChat(ctx, "buyer", "seller", "p1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := f.uc.SendMessage(ctx, "buyer", chatID, "hola")
		require.NoError(t, err)
	}
	_, err = f.uc.SendMessage(ctx, "buyer", chatID, "hola")
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))

	_, err = f.uc.SendMessage(ctx, "seller", chatID, "hola")
	assert.NoError(t, err, "limits are per user")
}

func TestStreamMessages_ParticipantsOnly(t *testing.T) {
	f := newChatFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	chatID, err := f.uc.GetOrCreateChat(ctx, "buyer", "seller", "p1")
	require.NoError(t, err)
	_, err = f.uc.SendMessage(ctx, "seller", chatID, "Sí, sigue disponible")
	require.NoError(t, err)

	err = f.uc.StreamMessages(ctx, "intruder", chatID, func(*entity.Message) error { return nil })
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	var got []string
	err = f.uc.StreamMessages(ctx, "buyer", chatID, func(m *entity.Message) error {
		got = append(got, m.Text)
		cancel()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sí, sigue disponible"}, got)
}
