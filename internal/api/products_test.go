package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/productgate/config"
	"github.com/talkincode/productgate/internal/product"
	"github.com/talkincode/productgate/internal/users"
	"github.com/talkincode/productgate/internal/webserver"
)

// fakeStore scripts store behavior so handler status/body mapping can
// be asserted without a live backend.
type fakeStore struct {
	backend   string
	created   *product.Product
	createErr error
	items     []product.Product
	listErr   error
	got       *product.Product
	getErr    error
	updated   *product.Product
	updateErr error
	deleted   *product.DeleteResult
	deleteErr error
}

func (f *fakeStore) Backend() string { return f.backend }

func (f *fakeStore) Create(context.Context, product.CreateInput) (*product.Product, error) {
	return f.created, f.createErr
}

func (f *fakeStore) List(context.Context, string) ([]product.Product, error) {
	return f.items, f.listErr
}

func (f *fakeStore) Get(context.Context, string) (*product.Product, error) {
	// honor the Store contract: a miss is an error, never (nil, nil)
	if f.got == nil && f.getErr == nil {
		return nil, product.Errorf(product.KindNotFound, "product not found")
	}
	return f.got, f.getErr
}

func (f *fakeStore) Update(context.Context, string, product.UpdateInput) (*product.Product, error) {
	return f.updated, f.updateErr
}

func (f *fakeStore) Delete(context.Context, string, string) (*product.DeleteResult, error) {
	return f.deleted, f.deleteErr
}

func (f *fakeStore) Ping(context.Context) error { return nil }

// joinStore additionally supports the with-user join
type joinStore struct {
	fakeStore
	composite *product.ProductWithOwner
	joinErr   error
}

func (f *joinStore) GetWithOwner(context.Context, string) (*product.ProductWithOwner, error) {
	return f.composite, f.joinErr
}

func newTestServer(t *testing.T, store product.Store) *webserver.WebServer {
	t.Helper()
	cfg := config.LoadConfig("")
	ws := webserver.NewWebServer(cfg)
	h := &Handler{
		config:    cfg,
		store:     store,
		startedAt: time.Now(),
	}
	h.Register(ws)
	return ws
}

func doJSON(ws *webserver.WebServer, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echoHeaderContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	ws.Echo().ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateProductCreated(t *testing.T) {
	now := time.Now()
	ws := newTestServer(t, &fakeStore{
		backend: config.BackendPostgres,
		created: &product.Product{ID: "7", Name: "Widget", Price: 9.99, UserID: "u1", CreatedAt: &now},
	})

	rec := doJSON(ws, http.MethodPost, "/products", `{"name":"Widget","price":9.99,"userId":"u1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "7", body["id"])
	assert.Equal(t, "Widget", body["name"])
	assert.Equal(t, 9.99, body["price"])
	assert.Equal(t, "u1", body["userId"])
}

func TestCreateProductUserDoesNotExist(t *testing.T) {
	ws := newTestServer(t, &fakeStore{
		backend:   config.BackendPostgres,
		createErr: product.Errorf(product.KindValidation, "user does not exist"),
	})

	rec := doJSON(ws, http.MethodPost, "/products", `{"name":"Widget","price":9.99,"userId":"ghost"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user does not exist", decodeBody(t, rec)["error"])
}

func TestCreateProductUpstreamFault(t *testing.T) {
	ws := newTestServer(t, &fakeStore{
		backend:   config.BackendPostgres,
		createErr: product.Errorf(product.KindUpstream, "users-api error"),
	})

	rec := doJSON(ws, http.MethodPost, "/products", `{"name":"Widget","price":9.99,"userId":"u1"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "users-api error", decodeBody(t, rec)["error"])
}

func TestGetProductNotFound(t *testing.T) {
	ws := newTestServer(t, &fakeStore{
		backend: config.BackendPostgres,
		getErr:  product.Errorf(product.KindNotFound, "product not found"),
	})

	rec := doJSON(ws, http.MethodGet, "/products/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", decodeBody(t, rec)["error"])
}

func TestListProducts(t *testing.T) {
	ws := newTestServer(t, &fakeStore{
		backend: config.BackendPostgres,
		items: []product.Product{
			{ID: "1", Name: "Widget", Price: 9.99, UserID: "u1"},
			{ID: "2", Name: "Gadget", Price: 5, UserID: "u2"},
		},
	})

	rec := doJSON(ws, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []product.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Widget", items[0].Name)
}

func TestDeleteProductResponseShapes(t *testing.T) {
	// the relational backend reports the deleted id
	ws := newTestServer(t, &fakeStore{
		backend: config.BackendPostgres,
		deleted: &product.DeleteResult{ID: "3"},
	})
	rec := doJSON(ws, http.MethodDelete, "/products/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", decodeBody(t, rec)["deleted"])

	// a nil result means the backend answers with no body
	ws = newTestServer(t, &fakeStore{backend: config.BackendCosmos})
	rec = doJSON(ws, http.MethodDelete, "/products/3?userId=u1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteProductNotFound(t *testing.T) {
	ws := newTestServer(t, &fakeStore{
		backend:   config.BackendPostgres,
		deleteErr: product.Errorf(product.KindNotFound, "product not found"),
	})

	rec := doJSON(ws, http.MethodDelete, "/products/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWithUserRouteRequiresJoinCapability(t *testing.T) {
	// plain store: the route is not registered, so echo backtracks the
	// request onto /products/:id where the "1/with-user" lookup misses
	ws := newTestServer(t, &fakeStore{backend: config.BackendCosmos})
	rec := doJSON(ws, http.MethodGet, "/products/1/with-user", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", decodeBody(t, rec)["error"])

	// join-capable store: composite body
	ws = newTestServer(t, &joinStore{
		fakeStore: fakeStore{backend: config.BackendPostgres},
		composite: &product.ProductWithOwner{
			Product: &product.Product{ID: "1", Name: "Widget", Price: 9.99, UserID: "u1"},
			User:    &users.User{ID: "u1", Name: "Ana", Email: "ana@example.com"},
		},
	})
	rec = doJSON(ws, http.MethodGet, "/products/1/with-user", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	p, ok := body["product"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Widget", p["name"])
	u, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ana", u["name"])
}

func TestHealth(t *testing.T) {
	ws := newTestServer(t, &fakeStore{backend: config.BackendPostgres})

	rec := doJSON(ws, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "productgate", body["service"])
	assert.Equal(t, config.BackendPostgres, body["backend"])
}

func TestDbHealthWithoutDatabase(t *testing.T) {
	ws := newTestServer(t, &fakeStore{backend: config.BackendCosmos})

	rec := doJSON(ws, http.MethodGet, "/db/health", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["ok"])
}
