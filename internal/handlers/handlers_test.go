package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salonmenu/internal/cache"
	"salonmenu/internal/handlers"
	"salonmenu/internal/middleware"
	"salonmenu/internal/repository"
	"salonmenu/internal/routes"
	"salonmenu/internal/services"
	"salonmenu/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *mux.Router
	store  *repository.MemoryStore
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repository.NewMemoryStore()
	menuSvc := services.NewMenuService(store, cache.NewMenuCache(client, time.Minute), nil)
	ownerSvc := services.NewOwnerService(store, secret, time.Hour)

	router := mux.NewRouter()
	routes.InitRoutes(router, routes.Handlers{
		Menu:   handlers.NewMenuHandler(menuSvc),
		Owner:  handlers.NewOwnerHandler(ownerSvc),
		Health: handlers.NewHealthHandler(menuSvc),
	}, middleware.OwnerScope(secret, menuSvc))
	return &testServer{router: router, store: store, redis: mr}
}

type envelope struct {
	Success bool            `json:"success"`
	ID      string          `json:"id"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details string          `json:"details"`
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func (s *testServer) owner(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	rec, _ := s.do(t, http.MethodPost, "/users", map[string]string{
		"email": uuid.NewString() + "@salon.test", "businessName": "Salon",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		ID    uuid.UUID `json:"id"`
		Token string    `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.ID, out.Token
}

func (s *testServer) section(t *testing.T, owner uuid.UUID, name string) uuid.UUID {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, fmt.Sprintf("/menu/%s/sections", owner), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return uuid.MustParse(env.ID)
}

func (s *testServer) service(t *testing.T, owner, section uuid.UUID, name string) uuid.UUID {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, fmt.Sprintf("/menu/%s/sections/%s/services", owner, section),
		map[string]any{"name": name, "duration": 45, "price": 25.5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.ID
}

type menuData struct {
	Sections []struct {
		ID       uuid.UUID `json:"id"`
		Name     string    `json:"name"`
		Position int       `json:"position"`
		Services []struct {
			ID       uuid.UUID `json:"id"`
			Position int       `json:"position"`
			Price    float64   `json:"price"`
		} `json:"services"`
		Packages []struct {
			ID         uuid.UUID   `json:"id"`
			ServiceIDs []uuid.UUID `json:"service_ids"`
		} `json:"packages"`
	} `json:"sections"`
}

func (s *testServer) menu(t *testing.T, owner uuid.UUID) (menuData, string) {
	t.Helper()
	rec, env := s.do(t, http.MethodGet, fmt.Sprintf("/menu/%s", owner), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, env.Success)
	var m menuData
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m, rec.Header().Get("X-Cache")
}

func orderBody(key string, ids ...uuid.UUID) map[string]any {
	items := make([]map[string]any, 0, len(ids))
	for i, id := range ids {
		items = append(items, map[string]any{"id": id, "order": i + 1})
	}
	return map[string]any{key: items}
}

func TestReorderSections(t *testing.T) {
	s := newTestServer(t, "")
	owner, _ := s.owner(t)
	x, y, z := s.section(t, owner, "X"), s.section(t, owner, "Y"), s.section(t, owner, "Z")

	rec, env := s.do(t, http.MethodPut, fmt.Sprintf("/menu/%s/sections/order", owner), orderBody("sections", z, x, y))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Message)

	m, _ := s.menu(t, owner)
	require.Len(t, m.Sections, 3)
	for i, want := range []uuid.UUID{z, x, y} {
		assert.Equal(t, want, m.Sections[i].ID)
		assert.Equal(t, i+1, m.Sections[i].Position)
	}
}

func TestReorder_RankComesFromArrayIndex(t *testing.T) {
	s := newTestServer(t, "")
	owner, _ := s.owner(t)
	sec := s.section(t, owner, "Hair")
	a, b := s.service(t, owner, sec, "A"), s.service(t, owner, sec, "B")

	body := map[string]any{"services": []map[string]any{
		{"id": b, "order": 7},
		{"id": a, "position": 7},
	}}
	rec, _ := s.do(t, http.MethodPut, fmt.Sprintf("/menu/%s/sections/%s/services/order", owner, sec), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	m, _ := s.menu(t, owner)
	assert.Equal(t, b, m.Sections[0].Services[0].ID)
	assert.Equal(t, 1, m.Sections[0].Services[0].Position)
	assert.Equal(t, a, m.Sections[0].Services[1].ID)
	assert.Equal(t, 2, m.Sections[0].Services[1].Position)
}

func TestReorder_BadRequests(t *testing.T) {
	s := newTestServer(t, "")
	owner, _ := s.owner(t)
	x, y := s.section(t, owner, "X"), s.section(t, owner, "Y")
	path := fmt.Sprintf("/menu/%s/sections/order", owner)

	cases := map[string]any{
		"not json":         "{",
		"missing key":      map[string]any{"services": []any{}},
		"not an array":     map[string]any{"sections": "x"},
		"null":             map[string]any{"sections": nil},
		"element not obj":  map[string]any{"sections": []any{1}},
		"missing id":       map[string]any{"sections": []any{map[string]any{"order": 1}}},
		"bad id":           map[string]any{"sections": []any{map[string]any{"id": "nope", "order": 1}}},
		"missing order":    map[string]any{"sections": []any{map[string]any{"id": x}}},
		"string order":     map[string]any{"sections": []any{map[string]any{"id": x, "order": "1"}}},
		"partial list":     orderBody("sections", y),
		"duplicate ids":    orderBody("sections", x, x),
		"foreign id":       orderBody("sections", x, y, uuid.New()),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, env := s.do(t, http.MethodPut, path, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}

	rec, _ := s.do(t, http.MethodPut, "/menu/not-a-uuid/sections/order", orderBody("sections"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReorder_EmptyListIsNoop(t *testing.T) {
	s := newTestServer(t, "")
	owner, _ := s.owner(t)
	s.section(t, owner, "X")

	rec, env := s.do(t, http.MethodPut, fmt.Sprintf("/menu/%s/sections/order", owner), map[string]any{"sections": []any{}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestReorder_SectionOfAnotherOwner(t *testing.T) {
	s := newTestServer(t, "")
	owner, _ := s.owner(t)
	stranger, _ := s.owner(t)
	sec := s.section(t, owner, "Hair")
	a := s.service(t, owner, sec, "A")

	rec, _ := s.do(t, http.MethodPut, fmt.Sprintf("/menu/%s/sections/%s/services/order", stranger, sec), orderBody("services", a))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSection(t *testing.T) {
	s := newTestServer(t, "")
	owner, _ := s.owner(t)
	path := fmt.Sprintf("/menu/%s/sections", owner)

	rec, env := s.do(t, http.MethodPost, path, map[string]any{"name": "Hair", "order": 3})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Message)
	_, err := uuid.Parse(env.ID)
	require.NoError(t, err)

	rec, env = s.do(t, http.MethodPost, path, map[string]any{"name": "Nails", "order": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)

	rec, _ = s.do(t, http.MethodPost, path, map[string]any{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/menu/%s/sections", uuid.New()), map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateServiceAndDeleteKeepsGap(t *testing.T) {
	s := newTestServer(t, "")
	owner, _ := s.owner(t)
	sec := s.section(t, owner, "Hair")
	first := s.service(t, owner, sec, "Cut")
	second := s.service(t, owner, sec, "Color")

	rec, _ := s.do(t, http.MethodPost, fmt.Sprintf("/menu/%s/sections/%s/services", owner, sec),
		map[string]any{"name": "Bad", "duration": 30, "price": 1.999})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := s.do(t, http.MethodDelete, fmt.Sprintf("/menu/%s/sections/%s/services/%s", owner, sec, first), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	m, _ := s.menu(t, owner)
	require.Len(t, m.Sections[0].Services, 1)
	assert.Equal(t, second, m.Sections[0].Services[0].ID)
	assert.Equal(t, 2, m.Sections[0].Services[0].Position)
	assert.Equal(t, 25.5, m.Sections[0].Services[0].Price)

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/menu/%s/sections/%s/services/%s", owner, sec, uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePackageAcrossSections(t *testing.T) {
	s := newTestServer(t, "")
	owner, _ := s.owner(t)
	hair := s.section(t, owner, "Hair")
	deals := s.section(t, owner, "Deals")
	a, b := s.service(t, owner, hair, "Cut"), s.service(t, owner, hair, "Color")

	rec, env := s.do(t, http.MethodPost, fmt.Sprintf("/sections/%s/packages", deals), map[string]any{
		"name": "Makeover", "totalPrice": 80, "duration": 120, "order": 1, "serviceIds": []uuid.UUID{a, b},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pkg := uuid.MustParse(env.ID)

	m, _ := s.menu(t, owner)
	require.Len(t, m.Sections, 2)
	require.Len(t, m.Sections[1].Packages, 1)
	assert.Equal(t, pkg, m.Sections[1].Packages[0].ID)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, m.Sections[1].Packages[0].ServiceIDs)

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/sections/%s/packages", deals), map[string]any{
		"name": "Empty", "totalPrice": 10, "duration": 10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/sections/%s/packages", deals), map[string]any{
		"name": "Ghost", "totalPrice": 10, "duration": 10, "serviceIds": []uuid.UUID{uuid.New()},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMenuCacheHeaders(t *testing.T) {
	s := newTestServer(t, "")
	owner, _ := s.owner(t)
	s.section(t, owner, "Hair")

	_, hit := s.menu(t, owner)
	assert.Equal(t, "MISS", hit)
	_, hit = s.menu(t, owner)
	assert.Equal(t, "HIT", hit)
	assert.True(t, s.redis.Exists(cache.Key(owner)))

	s.section(t, owner, "Nails")
	assert.False(t, s.redis.Exists(cache.Key(owner)))
	m, hit := s.menu(t, owner)
	assert.Equal(t, "MISS", hit)
	assert.Len(t, m.Sections, 2)
}

func TestUsersIdempotentOnEmail(t *testing.T) {
	s := newTestServer(t, "")
	body := map[string]string{"email": "anna@salon.test", "businessName": "Anna"}

	rec, _ := s.do(t, http.MethodPost, "/users", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var first map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "anna@salon.test", first["email"])
	assert.Equal(t, "Anna", first["business_name"])
	assert.NotContains(t, first, "token")

	rec, _ = s.do(t, http.MethodPost, "/users", body)
	var second map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first["id"], second["id"])

	rec, _ = s.do(t, http.MethodPost, "/users", map[string]string{"email": "anna@salon.test"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOwnerProfile(t *testing.T) {
	s := newTestServer(t, "mysecret")
	owner, token := s.owner(t)
	auth := "Bearer " + token

	rec, _ := s.do(t, http.MethodGet, fmt.Sprintf("/users/%s", owner), nil, "Authorization", auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, owner.String(), got["id"])
	assert.Equal(t, "Salon", got["business_name"])

	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/users/%s", owner), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// токен на владельца, которого нет в хранилище
	ghost := uuid.New()
	ghostToken, err := utils.GenerateToken("mysecret", ghost, time.Hour)
	require.NoError(t, err)
	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/users/%s", ghost), nil, "Authorization", "Bearer "+ghostToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/users/%s", ghost), nil, "Authorization", auth)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOwnerScope(t *testing.T) {
	s := newTestServer(t, "mysecret")
	owner, token := s.owner(t)
	require.NotEmpty(t, token)
	stranger, strangerToken := s.owner(t)
	auth := "Bearer " + token

	rec, _ := s.do(t, http.MethodGet, fmt.Sprintf("/menu/%s", owner), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/menu/%s", owner), nil, "Authorization", "Bearer junk")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/menu/%s", stranger), nil, "Authorization", auth)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := s.do(t, http.MethodPost, fmt.Sprintf("/menu/%s/sections", owner), map[string]any{"name": "Hair"}, "Authorization", auth)
	require.Equal(t, http.StatusCreated, rec.Code)
	sec := env.ID

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/sections/%s/packages", sec), map[string]any{"name": "P"},
		"Authorization", "Bearer "+strangerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/sections/%s/packages", uuid.New()), map[string]any{"name": "P"},
		"Authorization", auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	expired, err := utils.GenerateToken("mysecret", owner, -time.Minute)
	require.NoError(t, err)
	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/menu/%s", owner), nil, "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, fmt.Sprintf("/menu/%s", owner), nil, "Authorization", auth)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t, "")

	rec, _ := s.do(t, http.MethodGet, "/health", nil, "X-Request-ID", "req-42")
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")
	rec, _ := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.NotEmpty(t, body["timestamp"])

	down := httptest.NewRecorder()
	handlers.NewHealthHandler(downStore{}).Health(down, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, down.Code)
	require.NoError(t, json.Unmarshal(down.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "disconnected", body["database"])
}

func TestRecovererReturns500(t *testing.T) {
	h := middleware.RequestID(middleware.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
