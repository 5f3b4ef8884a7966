package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice/internal/draft"
	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryDrafts map[string]draft.Draft

func (m memoryDrafts) Save(_ context.Context, userID, form string, rows json.RawMessage) (draft.Draft, error) {
	d := draft.Draft{Form: form, Rows: rows, SavedAt: time.Now().UTC()}
	m[draft.Key(userID, form)] = d
	return d, nil
}

func (m memoryDrafts) Load(_ context.Context, userID, form string) (draft.Draft, error) {
	d, ok := m[draft.Key(userID, form)]
	if !ok {
		return draft.Draft{}, draft.ErrNotFound
	}
	return d, nil
}

func (m memoryDrafts) Delete(_ context.Context, userID, form string) error {
	delete(m, draft.Key(userID, form))
	return nil
}

func TestDraftRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := memoryDrafts{}
	r := gin.New()
	NewDraftHandler(store, testSecret, policy.RoleContabilidad).RegisterRoutes(r.Group(""))

	send := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", bearer(t, policy.RoleContabilidad))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNotFound, send(http.MethodGet, "/api/drafts/orden-compra", nil).Code)
	assert.Equal(t, http.StatusBadRequest, send(http.MethodPut, "/api/drafts/orden-compra", []byte(`{}`)).Code)
	assert.Equal(t, http.StatusBadRequest, send(http.MethodGet, "/api/drafts/Bad:Name", nil).Code)

	w := send(http.MethodPut, "/api/drafts/orden-compra", []byte(`{"rows":[{"item":"arena"}]}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, store, "draft:u-1:orden-compra")

	w = send(http.MethodGet, "/api/drafts/orden-compra", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"item":"arena"`)

	assert.Equal(t, http.StatusNoContent, send(http.MethodDelete, "/api/drafts/orden-compra", nil).Code)
	assert.Empty(t, store)
}

type stubLogService struct {
	gotFilter service.TransitionLogFilter
	gotPage   int
	gotLimit  int
}

func (s *stubLogService) Record(context.Context, *model.TransitionLog) error { return nil }

func (s *stubLogService) List(_ context.Context, f service.TransitionLogFilter, page, limit int) ([]service.TransitionLogResponse, int64, error) {
	s.gotFilter, s.gotPage, s.gotLimit = f, page, limit
	return []service.TransitionLogResponse{{ID: "a", Action: "transfer"}}, 1, nil
}

func TestTransitionLogRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubLogService{}
	r := gin.New()
	NewTransitionLogHandler(svc, testSecret, policy.RoleGerencia).RegisterRoutes(r.Group(""))

	req := httptest.NewRequest(http.MethodGet, "/api/transition-logs?page=2&limit=500&action=transfer&order_id=7", nil)
	req.Header.Set("Authorization", bearer(t, policy.RoleGerencia))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, svc.gotPage)
	assert.Equal(t, 100, svc.gotLimit)
	assert.Equal(t, "transfer", svc.gotFilter.Action)
	assert.Equal(t, int64(7), svc.gotFilter.OrderID)
	assert.Contains(t, w.Body.String(), `"total":1`)

	req = httptest.NewRequest(http.MethodGet, "/api/transition-logs", nil)
	req.Header.Set("Authorization", bearer(t, policy.RoleContabilidad))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHealthHandler(map[string]Check{
		"database": func(context.Context) error { return nil },
	}).RegisterRoutes(r.Group(""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","checks":{"database":"OK"}}`, w.Body.String())

	r = gin.New()
	NewHealthHandler(map[string]Check{
		"redis": func(context.Context) error { return assert.AnError },
	}).RegisterRoutes(r.Group(""))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
