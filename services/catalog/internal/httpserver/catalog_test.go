package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/Skotchmaster/artisan_shop/pkg/db"
	"github.com/Skotchmaster/artisan_shop/pkg/envelope"
	"github.com/Skotchmaster/artisan_shop/pkg/tokens"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/artisan_shop/services/catalog/internal/service"
)

var jwtSecret = []byte("test-jwt-secret")

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, _ := event.(map[string]any)
	f.events = append(f.events, publishedEvent{Topic: topic, Key: key, Event: m})
	return nil
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[int64]models.ProductView
	deleted []int64
}

func (f *fakeIndex) Put(_ context.Context, p models.ProductView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[p.ID] = p
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, q string, from, size int) (int64, []models.ProductView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProductView
	for _, p := range f.docs {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			out = append(out, p)
		}
	}
	return int64(len(out)), out, nil
}

type testEnv struct {
	e      *echo.Echo
	events *fakePublisher
	index  *fakeIndex
	svc    *service.CatalogService
}

func newTestEnv(t *testing.T, withIndex bool) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := pkgdb.Open(ctx, pkgdb.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(ctx))
	seeded, err := r.Seed(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	env := &testEnv{events: &fakePublisher{}}
	env.svc = &service.CatalogService{Repo: r, Events: env.events}
	if withIndex {
		env.index = &fakeIndex{docs: map[int64]models.ProductView{}}
		env.svc.Index = env.index
	}

	e := echo.New()
	e.HTTPErrorHandler = envelope.ErrorHandler
	Register(e, &Deps{CatalogHandler: &CatalogHTTP{Svc: env.svc}, JWTSecret: jwtSecret})
	env.e = e
	return env
}

type reply struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (env *testEnv) do(t *testing.T, method, target, body, role string) (*httptest.ResponseRecorder, reply) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if role != "" {
		tok, err := tokens.SignAccessToken("user-1", role, time.Now().Add(time.Minute), jwtSecret)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: tok})
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var r reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r), rec.Body.String())
	return rec, r
}

func TestListArtisans(t *testing.T) {
	env := newTestEnv(t, false)
	rec, r := env.do(t, http.MethodGet, "/catalog/artisans", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, r.Success)
	var items []models.Artisan
	require.NoError(t, json.Unmarshal(r.Data, &items))
	require.Len(t, items, 5)
	assert.Equal(t, "Emma Johnson", items[0].Name)
	assert.Less(t, items[0].ID, items[1].ID)
}

func TestGetArtisan(t *testing.T) {
	env := newTestEnv(t, false)

	rec, r := env.do(t, http.MethodGet, "/catalog/artisans/2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var a models.Artisan
	require.NoError(t, json.Unmarshal(r.Data, &a))
	assert.Equal(t, "Woodworker", a.Specialty)

	rec, r = env.do(t, http.MethodGet, "/catalog/artisans/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, r.Success)
	assert.Equal(t, "Invalid artisan ID", r.Message)

	rec, r = env.do(t, http.MethodGet, "/catalog/artisans/999", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Artisan with ID 999 not found", r.Message)
}

func TestListCategories(t *testing.T) {
	env := newTestEnv(t, false)
	rec, r := env.do(t, http.MethodGet, "/catalog/categories", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Category
	require.NoError(t, json.Unmarshal(r.Data, &items))
	assert.Len(t, items, 3)
}

func TestListProducts_FiltersAndOrder(t *testing.T) {
	env := newTestEnv(t, false)

	_, r := env.do(t, http.MethodGet, "/catalog/products", "", "")
	var all []models.ProductView
	require.NoError(t, json.Unmarshal(r.Data, &all))
	require.Len(t, all, 7)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
	assert.Equal(t, "Jewelry", all[0].CategoryName)
	assert.Equal(t, "Emma Johnson", all[0].ArtisanName)
	assert.Equal(t, "Jewelry Designer", all[0].ArtisanSpecialty)
	assert.True(t, all[0].Price.Equal(decimal.RequireFromString("89.99")), all[0].Price.String())

	// Home Decor is category 2; the woodworker is artisan 2.
	_, r = env.do(t, http.MethodGet, "/catalog/products?category_id=2", "", "")
	var decor []models.ProductView
	require.NoError(t, json.Unmarshal(r.Data, &decor))
	assert.Len(t, decor, 2)

	_, r = env.do(t, http.MethodGet, "/catalog/products?category_id=2&artisan_id=2", "", "")
	var both []models.ProductView
	require.NoError(t, json.Unmarshal(r.Data, &both))
	require.Len(t, both, 1)
	assert.Equal(t, "Walnut Serving Board", both[0].Name)

	rec, _ := env.do(t, http.MethodGet, "/catalog/products?artisan_id=x", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t, false)

	rec, r := env.do(t, http.MethodGet, "/catalog/products/3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p models.ProductView
	require.NoError(t, json.Unmarshal(r.Data, &p))
	assert.Equal(t, "Beaded Bracelet Set", p.Name)

	rec, _ = env.do(t, http.MethodGet, "/catalog/products/404", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductWrites_RequireAdmin(t *testing.T) {
	env := newTestEnv(t, false)
	body := `{"name":"Mug","description":"A mug","price":"12.50","category_id":2,"artisan_id":4}`

	rec, r := env.do(t, http.MethodPost, "/catalog/products", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, r.Success)

	rec, r = env.do(t, http.MethodPost, "/catalog/products", body, "user")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin access required", r.Message)

	rec, _ = env.do(t, http.MethodDelete, "/catalog/products/1", "", "user")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatePatchDeleteProduct(t *testing.T) {
	env := newTestEnv(t, true)

	rec, r := env.do(t, http.MethodPost, "/catalog/products",
		`{"name":"Mug","description":"A mug","price":"12.50","category_id":2,"artisan_id":4}`, "admin")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Product created", r.Message)
	var created models.ProductView
	require.NoError(t, json.Unmarshal(r.Data, &created))
	assert.Equal(t, "James Wilson", created.ArtisanName)
	assert.Equal(t, 1, created.StockQuantity)
	assert.Contains(t, env.index.docs, created.ID)

	rec, r = env.do(t, http.MethodPatch, "/catalog/products/"+itoa(created.ID), `{"price":"15","stock_quantity":4}`, "admin")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var patched models.ProductView
	require.NoError(t, json.Unmarshal(r.Data, &patched))
	assert.True(t, patched.Price.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 4, patched.StockQuantity)
	assert.Equal(t, "Mug", patched.Name)

	rec, r = env.do(t, http.MethodDelete, "/catalog/products/"+itoa(created.ID), "", "admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, r.Success)
	assert.NotContains(t, env.index.docs, created.ID)

	rec, _ = env.do(t, http.MethodDelete, "/catalog/products/"+itoa(created.ID), "", "admin")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Len(t, env.events.events, 3)
	assert.Equal(t, "product_events", env.events.events[0].Topic)
	assert.Equal(t, "product_created", env.events.events[0].Event["type"])
	assert.Equal(t, "product_updated", env.events.events[1].Event["type"])
	assert.Equal(t, "product_deleted", env.events.events[2].Event["type"])
}

func TestCreateProduct_Validation(t *testing.T) {
	env := newTestEnv(t, false)

	cases := []string{
		`{"description":"d","price":"1","category_id":1,"artisan_id":1}`,
		`{"name":"n","price":"1","category_id":1,"artisan_id":1}`,
		`{"name":"n","description":"d","category_id":1,"artisan_id":1}`,
		`{"name":"n","description":"d","price":"-1","category_id":1,"artisan_id":1}`,
		`{"name":"n","description":"d","price":"1","stock_quantity":-2,"category_id":1,"artisan_id":1}`,
		`{"name":"n","description":"d","price":"1","category_id":99,"artisan_id":1}`,
		`{"name":"n","description":"d","price":"1","category_id":1,"artisan_id":99}`,
	}
	for _, body := range cases {
		rec, r := env.do(t, http.MethodPost, "/catalog/products", body, "admin")
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.False(t, r.Success)
	}
	assert.Empty(t, env.events.events)
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv(t, false)
	rec, _ := env.do(t, http.MethodGet, "/catalog/products/search?q=vase", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env = newTestEnv(t, true)
	n, err := env.svc.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	rec, _ = env.do(t, http.MethodGet, "/catalog/products/search?q=", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, r := env.do(t, http.MethodGet, "/catalog/products/search?q=vase", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Total    int64                `json:"total"`
		Products []models.ProductView `json:"products"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &res))
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, "Stoneware Vase", res.Products[0].Name)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
