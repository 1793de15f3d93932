package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/query"
	"tijuanashop/pkg/errors"
)

// These tests talk to the Firestore emulator and are skipped unless
// FIRESTORE_EMULATOR_HOST is set.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), fmt.Sprintf("tijuanashop-test-%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func seedUser(t *testing.T, repo *firestoreUserRepository, id string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &entity.User{ID: id, Name: "User " + id, Email: id + "@example.com"}))
}

func seedProduct(t *testing.T, repo *firestoreProductRepository, title string, price float64) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Title:     title,
		Price:     price,
		Category:  "electronica",
		Condition: entity.ConditionNew,
		Location:  "Zona Río",
		SellerID:  "seller",
		Images:    []string{"https://example.com/a.jpg"},
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestEmulator_ProductPlans(t *testing.T) {
	client := emulatorClient(t)
	repo := &firestoreProductRepository{client: client}
	ctx := context.Background()

	a := seedProduct(t, repo, "iPhone 12", 6000)
	seedProduct(t, repo, "iPad", 9000)
	c := seedProduct(t, repo, "iPhone 14", 15000)

	q := query.NewBuilder(20, query.PriceDrop).Build(query.ProductFilter{SearchTerm: "iPhone"})
	got, err := query.Execute(ctx, repo, q)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())

	q = query.NewBuilder(20, query.PriceDrop).Build(query.ProductFilter{IDs: []string{c.ID, "missing"}})
	got, err = query.Execute(ctx, repo, q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
}

func TestEmulator_ChatCreateIfAbsent(t *testing.T) {
	client := emulatorClient(t)
	repo := &firestoreChatRepository{client: client}
	ctx := context.Background()

	newChat := func() *entity.Chat {
		return &entity.Chat{ID: "fixed-key", Participants: []string{"a", "b"}, ProductID: "p1"}
	}

	var wg sync.WaitGroup
	created := make([]bool, 5)
	for i := range created {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := repo.CreateIfAbsent(ctx, newChat())
			assert.NoError(t, err)
			created[i] = ok
		}(i)
	}
	wg.Wait()

	n := 0
	for _, ok := range created {
		if ok {
			n++
		}
	}
	assert.Equal(t, 1, n)

	chats, err := repo.FindByParticipantAndProduct(ctx, "b", "p1")
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestEmulator_MessagesUpdateSummary(t *testing.T) {
	client := emulatorClient(t)
	repo := &firestoreChatRepository{client: client}
	ctx := context.Background()

	_, err := repo.CreateIfAbsent(ctx, &entity.Chat{ID: "c1", Participants: []string{"a", "b"}, ProductID: "p1"})
	require.NoError(t, err)

	require.NoError(t, repo.CreateMessage(ctx, &entity.Message{ChatID: "c1", SenderID: "a", Text: "Hola"}))
	require.NoError(t, repo.CreateMessage(ctx, &entity.Message{ChatID: "c1", SenderID: "b", Text: "¿Sigue disponible?"}))

	msgs, err := repo.ListMessages(ctx, "c1", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hola", msgs[0].Text)

	chat, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, chat.LastMessage)
	assert.Equal(t, "¿Sigue disponible?", chat.LastMessage.Text)

	err = repo.CreateMessage(ctx, &entity.Message{ChatID: "nope", SenderID: "a", Text: "x"})
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestEmulator_FavoriteToggle(t *testing.T) {
	client := emulatorClient(t)
	users := &firestoreUserRepository{client: client}
	products := &firestoreProductRepository{client: client}
	favs := &firestoreFavoriteRepository{client: client}
	ctx := context.Background()

	seedUser(t, users, "u1")
	p := seedProduct(t, products, "Sofá", 2500)

	on, err := favs.Toggle(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.True(t, on)

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, u.Favorites)
	stored, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, stored.FavoritedBy)

	off, err := favs.Toggle(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.False(t, off)

	_, err = favs.Toggle(ctx, "ghost", p.ID)
	assert.True(t, errors.Is(err, "PRECONDITION_FAILED"))

	_, err = favs.Toggle(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestEmulator_DeleteProductClearsFavorites(t *testing.T) {
	client := emulatorClient(t)
	users := &firestoreUserRepository{client: client}
	products := &firestoreProductRepository{client: client}
	favs := &firestoreFavoriteRepository{client: client}
	ctx := context.Background()

	seedUser(t, users, "u1")
	seedUser(t, users, "u2")
	gone := seedProduct(t, products, "Laptop", 9000)
	kept := seedProduct(t, products, "Tablet", 3000)

	for _, uid := range []string{"u1", "u2"} {
		_, err := favs.Toggle(ctx, uid, gone.ID)
		require.NoError(t, err)
	}
	_, err := favs.Toggle(ctx, "u1", kept.ID)
	require.NoError(t, err)

	require.NoError(t, products.Delete(ctx, gone.ID))

	u1, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, u1.Favorites)
	u2, err := users.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, u2.Favorites)

	_, err = products.GetByID(ctx, gone.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.True(t, errors.Is(products.Delete(ctx, gone.ID), "NOT_FOUND"))
}

func TestEmulator_ToggleDropsDanglingFavorite(t *testing.T) {
	client := emulatorClient(t)
	users := &firestoreUserRepository{client: client}
	products := &firestoreProductRepository{client: client}
	favs := &firestoreFavoriteRepository{client: client}
	ctx := context.Background()

	seedUser(t, users, "u1")
	p := seedProduct(t, products, "Sofá", 2500)
	_, err := favs.Toggle(ctx, "u1", p.ID)
	require.NoError(t, err)

	_, err = client.Collection(productsCollection).Doc(p.ID).Delete(ctx)
	require.NoError(t, err)

	on, err := favs.Toggle(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.False(t, on)

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.Favorites)
}
