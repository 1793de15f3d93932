package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/query"
	"tijuanashop/internal/domain/query/querytest"
	"tijuanashop/internal/infrastructure/events"
	"tijuanashop/pkg/errors"
)

var baseTime = time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)

// storeErr builds the error the Firestore adapter returns for a failed
// operation.
func storeErr(code codes.Code, path, op string) error {
	se := events.NewStoreError(path, op, nil, status.Error(code, "rejected"))
	if code == codes.PermissionDenied {
		return errors.PermissionDenied("Missing or insufficient permissions", se)
	}
	return errors.Internal("Store operation failed", se)
}

// recorder collects every event published on an emitter.
type recorder struct {
	mu     sync.Mutex
	events []*events.StoreError
	names  []string
}

func newRecordingEmitter() (*events.Emitter, *recorder) {
	em := events.NewEmitter(nil)
	rec := &recorder{}
	for _, name := range []string{events.PermissionError, events.StoreFailure} {
		name := name
		em.Subscribe(name, func(ctx context.Context, e *events.StoreError) error {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.events = append(rec.events, e)
			rec.names = append(rec.names, name)
			return nil
		})
	}
	return em, rec
}

func (r *recorder) all() ([]string, []*events.StoreError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...), append([]*events.StoreError(nil), r.events...)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User

	CreateErr error
	UpdateErr error
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		u.Normalize()
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return errors.Conflict("User already exists")
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	cp.Favorites = append([]string{}, u.Favorites...)
	return &cp, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *entity.User) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return errors.NotFound("User", nil)
	}
	u.Name, u.Avatar, u.Location = user.Name, user.Avatar, user.Location
	return nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id, role string) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	total := int64(len(ids))
	if offset > len(ids) {
		offset = len(ids)
	}
	ids = ids[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.users[id])
	}
	return out, total, nil
}

// fakeProductRepo evaluates plans with querytest.Store and keeps CRUD in
// the same map.
type fakeProductRepo struct {
	*querytest.Store

	// users, when set, has deleted listings removed from its favorites.
	users *fakeUserRepo

	mu           sync.Mutex
	seq          int
	CreateErr    error
	UpdateErr    error
	IncrementErr error
	views        map[string]int
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	return &fakeProductRepo{Store: querytest.NewStore(products...), views: make(map[string]int)}
}

func (r *fakeProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()
	p.ID = fmt.Sprintf("new-%03d", seq)
	p.CreatedAt = baseTime.Add(time.Duration(seq) * time.Hour)
	r.Put(p)
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, ok := r.Get(id)
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *entity.Product) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if _, ok := r.Get(p.ID); !ok {
		return errors.NotFound("Product", nil)
	}
	cp := *p
	r.Put(&cp)
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	p, ok := r.Get(id)
	if !ok {
		return errors.NotFound("Product", nil)
	}
	if r.users != nil {
		r.users.mu.Lock()
		for _, uid := range p.FavoritedBy {
			if u, ok := r.users.users[uid]; ok {
				u.Favorites = remove(u.Favorites, id)
			}
		}
		r.users.mu.Unlock()
	}
	r.Store.Delete(id)
	return nil
}

func (r *fakeProductRepo) IncrementViews(ctx context.Context, id string) error {
	if r.IncrementErr != nil {
		return r.IncrementErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[id]++
	return nil
}

func (r *fakeProductRepo) viewCount(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[id]
}

var _ query.Runner = (*fakeProductRepo)(nil)

type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	messages map[string][]*entity.Message
	seq      int

	FindErr   error
	CreateErr error
	creates   int
}

func newFakeChatRepo(chats ...*entity.Chat) *fakeChatRepo {
	r := &fakeChatRepo{chats: make(map[string]*entity.Chat), messages: make(map[string][]*entity.Message)}
	for _, c := range chats {
		r.chats[c.ID] = c
	}
	return r
}

func (r *fakeChatRepo) FindByParticipantAndProduct(ctx context.Context, userID, productID string) ([]*entity.Chat, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Chat
	for _, c := range r.chats {
		if c.ProductID == productID && c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeChatRepo) CreateIfAbsent(ctx context.Context, chat *entity.Chat) (bool, error) {
	if r.CreateErr != nil {
		return false, r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[chat.ID]; ok {
		return false, nil
	}
	cp := *chat
	cp.CreatedAt = baseTime
	r.chats[chat.ID] = &cp
	r.creates++
	return true, nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeChatRepo) ListByUserID(ctx context.Context, userID string) ([]*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Chat
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[m.ChatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	r.seq++
	m.ID = fmt.Sprintf("m%03d", r.seq)
	m.Timestamp = baseTime.Add(time.Duration(r.seq) * time.Second)
	r.messages[m.ChatID] = append(r.messages[m.ChatID], m)
	c.LastMessage = &entity.LastMessage{Text: m.Text, Timestamp: m.Timestamp}
	return nil
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, chatID string, limit int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[chatID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]*entity.Message(nil), msgs...), nil
}

func (r *fakeChatRepo) WatchMessages(ctx context.Context, chatID string, fn func(*entity.Message) error) error {
	r.mu.Lock()
	msgs := append([]*entity.Message(nil), r.messages[chatID]...)
	r.mu.Unlock()
	for _, m := range msgs {
		if err := fn(m); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return nil
}

func (r *fakeChatRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chats)
}

// fakeFavoriteRepo applies the toggle to the user and product fakes under
// one lock.
type fakeFavoriteRepo struct {
	mu       sync.Mutex
	users    *fakeUserRepo
	products *fakeProductRepo
	Err      error
}

func (r *fakeFavoriteRepo) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users.mu.Lock()
	user, ok := r.users.users[userID]
	r.users.mu.Unlock()
	if !ok {
		return false, errors.PreconditionFailed("User profile does not exist", nil)
	}
	if r.Err != nil {
		return false, r.Err
	}
	product, ok := r.products.Get(productID)
	if !ok {
		if !user.HasFavorite(productID) {
			return false, errors.NotFound("Product", nil)
		}
		r.users.mu.Lock()
		user.Favorites = remove(user.Favorites, productID)
		r.users.mu.Unlock()
		return false, nil
	}

	if user.HasFavorite(productID) {
		user.Favorites = remove(user.Favorites, productID)
		product.FavoritedBy = remove(product.FavoritedBy, userID)
		return false, nil
	}
	user.Favorites = append(user.Favorites, productID)
	product.FavoritedBy = append(product.FavoritedBy, userID)
	return true, nil
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

type fakeAuth struct {
	mu        sync.Mutex
	created   []string
	deleted   []string
	CreateErr error
}

func (a *fakeAuth) CreateUser(ctx context.Context, email, password, displayName, photoURL string) (string, error) {
	if a.CreateErr != nil {
		return "", a.CreateErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	uid := fmt.Sprintf("uid-%d", len(a.created)+1)
	a.created = append(a.created, uid)
	return uid, nil
}

func (a *fakeAuth) DeleteUser(ctx context.Context, uid string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, uid)
	return nil
}

func (a *fakeAuth) VerifyToken(ctx context.Context, token string) (string, error) {
	return token, nil
}

func listing(id, title, sellerID string, offset time.Duration) *entity.Product {
	return &entity.Product{
		ID:        id,
		Title:     title,
		Price:     1000,
		Category:  "electronica",
		Condition: entity.ConditionUsed,
		Location:  "Zona Río",
		SellerID:  sellerID,
		Images:    []string{"https://picsum.photos/seed/" + id + "/600/400"},
		CreatedAt: baseTime.Add(offset),
	}
}
