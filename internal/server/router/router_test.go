package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fieldops/internal/inventory"
	"github.com/mamadbah2/fieldops/internal/repository/filestore"
	"github.com/mamadbah2/fieldops/internal/server/handlers"
	"github.com/mamadbah2/fieldops/internal/service/transfer"
)

func newEngine(t *testing.T) http.Handler {
	t.Helper()

	store, err := filestore.New(t.TempDir(), nil)
	require.NoError(t, err)
	ledger, err := inventory.Open(context.Background(), inventory.NewKVSnapshot(store, ""), nil)
	require.NoError(t, err)

	return New(Handlers{
		Inventory: handlers.NewInventoryHandler(ledger, transfer.NewService(ledger, nil, "", nil), nil),
	}, nil)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newEngine(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestInventoryRoutesMounted(t *testing.T) {
	engine := newEngine(t)

	for _, path := range []string{"/api/inventory", "/api/inventory/summary", "/api/inventory/export"} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestOptionalRoutesSkipped(t *testing.T) {
	engine := newEngine(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/map/messages", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
