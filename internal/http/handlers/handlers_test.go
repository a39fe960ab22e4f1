package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tracker/internal/auth"
	"tracker/internal/http/dispatch"
	"tracker/internal/http/middleware"
	"tracker/internal/store"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

const testSecret = "handler-test-secret"

type harness struct {
	t      *testing.T
	engine *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "api.db")+"?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.Migrate(context.Background(), db, store.SQLite))

	s := store.New(db, store.SQLite, nil)
	d := dispatch.New(auth.NewJWTResolver(testSecret), nil, nil)
	api := New(s, d, auth.NewIssuer(testSecret, time.Hour), nil)

	r := gin.New()
	r.Use(middleware.RequestID())
	api.Mount(r.Group("/api"))
	return &harness{t: t, engine: r}
}

// do sends a JSON request and decodes the JSON response, if any.
func (h *harness) do(method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	var out map[string]any
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (h *harness) signUp(email string) string {
	h.t.Helper()
	w, out := h.do(http.MethodPost, "/api/auth/register", "", fmt.Sprintf(`{"email":%q,"name":"Tester","password":"s3cret!"}`, email))
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return out["access_token"].(string)
}

// create posts body to path and returns the id of the created resource.
func (h *harness) create(path, token, body string) int64 {
	h.t.Helper()
	w, out := h.do(http.MethodPost, path, token, body)
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return int64(out["id"].(float64))
}

func nodes(conn map[string]any) []map[string]any {
	edges := conn["edges"].([]any)
	out := make([]map[string]any, len(edges))
	for i, e := range edges {
		out[i] = e.(map[string]any)["node"].(map[string]any)
	}
	return out
}

func errorPaths(out map[string]any) []string {
	var paths []string
	extras, _ := out["extras"].(map[string]any)
	list, _ := extras["errors"].([]any)
	for _, e := range list {
		paths = append(paths, e.(map[string]any)["path"].(string))
	}
	return paths
}

const businessClient = `{"type":"BUSINESS","business_name":"Acme","vat_number":"IT01","country_code":"IT"}`

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)
	token := h.signUp("jane@example.com")

	w, out := h.do(http.MethodGet, "/api/profile", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", out["email"])
	assert.NotContains(t, out, "password")

	w, out = h.do(http.MethodGet, "/api/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", out["code"])

	w, _ = h.do(http.MethodPost, "/api/auth/register", "", `{"email":"jane@example.com","name":"Again","password":"x"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, out = h.do(http.MethodPost, "/api/auth/login", "", `{"email":"jane@example.com","password":"s3cret!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, out["access_token"])

	w, _ = h.do(http.MethodPost, "/api/auth/login", "", `{"email":"jane@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClients_CRUD(t *testing.T) {
	h := newHarness(t)
	token := h.signUp("jane@example.com")
	id := h.create("/api/clients", token, businessClient)
	path := fmt.Sprintf("/api/clients/%d", id)

	w, out := h.do(http.MethodGet, path, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BUSINESS", out["type"])
	assert.Equal(t, "Acme", out["business_name"])

	w, out = h.do(http.MethodPut, path, token, `{"type":"PRIVATE","first_name":"Ada","last_name":"Lovelace","fiscal_code":"LVL"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PRIVATE", out["type"])
	assert.Equal(t, "Ada", out["first_name"])
	assert.Nil(t, out["business_name"])
	assert.Equal(t, "IT", out["country_code"])

	w, out = h.do(http.MethodGet, "/api/clients", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, out["totalCount"])
	assert.Len(t, nodes(out), 1)

	other := h.signUp("bob@example.com")
	w, _ = h.do(http.MethodGet, path, other, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = h.do(http.MethodDelete, path, other, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = h.do(http.MethodDelete, path, token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = h.do(http.MethodGet, path, token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClients_ValidationListsEveryViolation(t *testing.T) {
	h := newHarness(t)
	token := h.signUp("jane@example.com")

	w, out := h.do(http.MethodPost, "/api/clients", token, `{"type":"PRIVATE","first_name":"Ada","country_code":"it","email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", out["code"])
	paths := errorPaths(out)
	assert.Contains(t, paths, "body.last_name")
	assert.Contains(t, paths, "body.fiscal_code")
	assert.Contains(t, paths, "body.country_code")
	assert.Contains(t, paths, "body.email")

	id := h.create("/api/clients", token, businessClient)
	w, out = h.do(http.MethodPut, fmt.Sprintf("/api/clients/%d", id), token, `{"first_name":"Mario"}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, []string{"body.type"}, errorPaths(out))

	w, out = h.do(http.MethodGet, "/api/clients/abc", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"params.id"}, errorPaths(out))
}

func TestProjects_OwnershipAndPaging(t *testing.T) {
	h := newHarness(t)
	token := h.signUp("jane@example.com")
	other := h.signUp("bob@example.com")
	clientID := h.create("/api/clients", token, businessClient)
	foreignClient := h.create("/api/clients", other, businessClient)

	w, _ := h.do(http.MethodPost, "/api/projects", token, fmt.Sprintf(`{"client_id":%d,"name":"Nope","hourly_rate":10}`, foreignClient))
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, name := range []string{"Gamma", "Alpha", "Beta"} {
		h.create("/api/projects", token, fmt.Sprintf(`{"client_id":%d,"name":%q,"hourly_rate":50}`, clientID, name))
	}

	w, out := h.do(http.MethodGet, "/api/projects?first=2&orderBy=name", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := nodes(out)
	require.Len(t, page, 2)
	assert.Equal(t, "Alpha", page[0]["name"])
	assert.Equal(t, "Beta", page[1]["name"])
	info := out["pageInfo"].(map[string]any)
	assert.Equal(t, true, info["hasNextPage"])

	w, out = h.do(http.MethodGet, "/api/projects?first=2&orderBy=name&after="+url.QueryEscape(info["endCursor"].(string)), token, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = nodes(out)
	require.Len(t, page, 1)
	assert.Equal(t, "Gamma", page[0]["name"])
	assert.Equal(t, true, out["pageInfo"].(map[string]any)["hasPreviousPage"])

	w, out = h.do(http.MethodGet, "/api/projects?orderBy=password&first=1&before=abc", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"query.orderBy", "query.before"}, errorPaths(out))

	w, out = h.do(http.MethodGet, fmt.Sprintf("/api/projects?client_id=%d", foreignClient), token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, out["totalCount"])

	projectID := int64(page[0]["id"].(float64))
	w, _ = h.do(http.MethodPut, fmt.Sprintf("/api/projects/%d", projectID), token, fmt.Sprintf(`{"client_id":%d}`, foreignClient))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, out = h.do(http.MethodPut, fmt.Sprintf("/api/projects/%d", projectID), token, `{"budget":1000,"description":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1000.0, out["budget"])
	assert.Equal(t, "Gamma", out["name"])
}

func TestTasks_BatchAndFilter(t *testing.T) {
	h := newHarness(t)
	token := h.signUp("jane@example.com")
	clientID := h.create("/api/clients", token, businessClient)
	projectID := h.create("/api/projects", token, fmt.Sprintf(`{"client_id":%d,"name":"Site","hourly_rate":50}`, clientID))

	body := fmt.Sprintf(`[{"project_id":%[1]d,"name":"Design"},{"project_id":%[1]d,"name":"Build","expected_hours":8}]`, projectID)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/batch", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created, 2)
	assert.Equal(t, "Design", created[0]["name"])
	assert.Equal(t, 8.0, created[1]["expected_hours"])
	assert.Equal(t, false, created[1]["is_completed"])

	single := h.create("/api/tasks", token, fmt.Sprintf(`{"project_id":%d,"name":"Ship"}`, projectID))

	w, out := h.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", single), token, `{"is_completed":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, out["is_completed"])

	w, out = h.do(http.MethodGet, "/api/tasks?is_completed=false", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, out["totalCount"])

	other := h.signUp("bob@example.com")
	w, _ = h.do(http.MethodPost, "/api/tasks/batch", other, fmt.Sprintf(`{"project_id":%d,"name":"Sneaky"}`, projectID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = h.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", single), token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSessions_TrackAndInvoice(t *testing.T) {
	h := newHarness(t)
	token := h.signUp("jane@example.com")
	clientID := h.create("/api/clients", token, businessClient)
	projectID := h.create("/api/projects", token, fmt.Sprintf(`{"client_id":%d,"name":"Site","hourly_rate":50}`, clientID))
	taskID := h.create("/api/tasks", token, fmt.Sprintf(`{"project_id":%d,"name":"Design"}`, projectID))

	sessionID := h.create("/api/sessions", token, fmt.Sprintf(`{"task_id":%d}`, taskID))
	w, out := h.do(http.MethodPost, "/api/sessions", token, fmt.Sprintf(`{"task_id":%d}`, taskID))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, float64(sessionID), out["extras"].(map[string]any)["session_id"])

	w, out = h.do(http.MethodGet, "/api/sessions?open=true", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1.0, out["totalCount"])

	end := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	w, out = h.do(http.MethodPut, fmt.Sprintf("/api/sessions/%d/stop", sessionID), token, fmt.Sprintf(`{"end_time":%q}`, end))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, out["end_time"])

	w, _ = h.do(http.MethodPut, fmt.Sprintf("/api/sessions/%d/stop", sessionID), token, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	second := h.create("/api/sessions", token, fmt.Sprintf(`{"task_id":%d}`, taskID))
	w, _ = h.do(http.MethodPut, fmt.Sprintf("/api/sessions/%d/stop", second), token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/invoice", projectID), token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "INVOICE_")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w, out = h.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/invoice?tax_rate_id=77", projectID), token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", out["code"])

	w, _ = h.do(http.MethodDelete, fmt.Sprintf("/api/sessions/%d", second), token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = h.do(http.MethodDelete, fmt.Sprintf("/api/sessions/%d", second), token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaxRates(t *testing.T) {
	h := newHarness(t)
	token := h.signUp("jane@example.com")

	w, out := h.do(http.MethodPost, "/api/tax-rates", token, `{"label":"VAT","value":22}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"body.value"}, errorPaths(out))

	vat := h.create("/api/tax-rates", token, `{"label":"VAT","value":0.22}`)
	h.create("/api/tax-rates", token, `{"label":"Reduced","value":0.04}`)

	w, out = h.do(http.MethodGet, "/api/tax-rates?orderBy=value&orderDirection=DESC", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := nodes(out)
	require.Len(t, page, 2)
	assert.Equal(t, "VAT", page[0]["label"])

	w, _ = h.do(http.MethodDelete, fmt.Sprintf("/api/tax-rates/%d", vat), token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = h.do(http.MethodDelete, fmt.Sprintf("/api/tax-rates/%d", vat), token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	w, out := h.do(http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])

	w, out = h.do(http.MethodGet, "/api/db-check", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])
}
