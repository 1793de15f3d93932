package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"tijuanashop/internal/adapter/api"
	"tijuanashop/internal/domain/entity"
	"tijuanashop/internal/domain/query"
	"tijuanashop/internal/domain/query/querytest"
	"tijuanashop/internal/infrastructure/ai"
	"tijuanashop/internal/usecase"
	"tijuanashop/pkg/errors"
	"tijuanashop/pkg/response"
)

var baseTime = time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)

type productStore struct {
	*querytest.Store
	mu  sync.Mutex
	seq int
}

func (s *productStore) Create(ctx context.Context, p *entity.Product) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()
	p.ID = fmt.Sprintf("new%d", seq)
	p.CreatedAt = baseTime.Add(time.Hour * time.Duration(seq))
	s.Put(p)
	return nil
}

func (s *productStore) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, ok := s.Get(id)
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	cp := *p
	return &cp, nil
}

func (s *productStore) Update(ctx context.Context, p *entity.Product) error {
	s.Put(p)
	return nil
}

func (s *productStore) Delete(ctx context.Context, id string) error {
	s.Store.Delete(id)
	return nil
}

func (s *productStore) IncrementViews(ctx context.Context, id string) error {
	return nil
}

type userStore struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newUserStore(users ...*entity.User) *userStore {
	s := &userStore{users: make(map[string]*entity.User)}
	for _, u := range users {
		u.Normalize()
		s.users[u.ID] = u
	}
	return s
}

func (s *userStore) Create(ctx context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	return &cp, nil
}

func (s *userStore) UpdateProfile(ctx context.Context, u *entity.User) error {
	return s.Create(ctx, u)
}

func (s *userStore) UpdateRole(ctx context.Context, id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	u.Role = role
	return nil
}

func (s *userStore) List(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

// favoriteStore keeps both sides of the relation on the in-memory stores.
type favoriteStore struct {
	users    *userStore
	products *productStore
}

func (s *favoriteStore) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	s.users.mu.Lock()
	defer s.users.mu.Unlock()
	u, ok := s.users.users[userID]
	if !ok {
		return false, errors.PreconditionFailed("User profile does not exist", nil)
	}
	p, ok := s.products.Get(productID)
	if !ok {
		return false, errors.NotFound("Product", nil)
	}
	if u.HasFavorite(productID) {
		u.Favorites = without(u.Favorites, productID)
		p.FavoritedBy = without(p.FavoritedBy, userID)
		return false, nil
	}
	u.Favorites = append(u.Favorites, productID)
	p.FavoritedBy = append(p.FavoritedBy, userID)
	return true, nil
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func listing(id, title, category string, price float64, offset time.Duration) *entity.Product {
	return &entity.Product{
		ID:          id,
		Title:       title,
		Description: title,
		Price:       price,
		Category:    category,
		Condition:   entity.ConditionUsed,
		Location:    "Zona Río",
		SellerID:    "seller",
		Images:      []string{"https://picsum.photos/seed/" + id + "/600/400"},
		CreatedAt:   baseTime.Add(offset),
		FavoritedBy: []string{},
	}
}

type testServer struct {
	e        *echo.Echo
	products *productStore
	users    *userStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	products := &productStore{Store: querytest.NewStore(
		listing("p1", "iPhone 12", "electronica", 8000, 0),
		listing("p2", "Laptop Dell", "electronica", 9500, time.Minute),
		listing("p3", "Sofá de tres plazas", "hogar", 4200, 2*time.Minute),
	)}
	users := newUserStore(
		&entity.User{ID: "seller", Name: "Ana"},
		&entity.User{ID: "buyer", Name: "Luis"},
		&entity.User{ID: "boss", Name: "Marta", Role: entity.RoleAdmin},
	)

	productUC := usecase.NewProductUseCase(products, users, query.NewBuilder(20, query.PriceDrop), nil)
	searchUC := usecase.NewSearchUseCase(ai.NewRuleProvider(), nil, productUC)
	favoriteUC := usecase.NewFavoriteUseCase(&favoriteStore{users: users, products: products}, users, productUC, nil)
	chatUC := usecase.NewChatUseCase(nil, users, products, nil, nil, nil)
	userUC := usecase.NewUserUseCase(users, nil, productUC, nil, 50)
	Setup(userUC, productUC, searchUC, favoriteUC, chatUC)

	e := echo.New()
	e.Validator = api.NewValidator()
	return &testServer{e: e, products: products, users: users}
}

// call runs h against a request. uid, when set, plays the part of the
// auth middleware.
func (s *testServer) call(h echo.HandlerFunc, method, target, body, uid string, params ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	if uid != "" {
		c.Set("uid", uid)
	}
	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	_ = h(c)
	return rec
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
