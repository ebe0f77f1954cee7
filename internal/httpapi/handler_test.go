package httpapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/tracker-service/internal/auth"
	"jobtracker/tracker-service/internal/httpapi"
	"jobtracker/tracker-service/internal/store/memory"
	"jobtracker/tracker-service/internal/tracker"
)

var fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := tracker.NewService(memory.New(), nil, tracker.WithClock(func() time.Time { return fixedNow }))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", httpapi.Health("tracker-service", "test"))
	httpapi.NewHandler(svc, auth.HeaderResolver{}).RegisterRoutes(mux)
	srv := httptest.NewServer(httpapi.Logging(mux))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, user, body string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set("x-user-id", user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func errorOf(t *testing.T, b []byte) string {
	t.Helper()
	var e struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(b, &e))
	return e.Error
}

func create(t *testing.T, srv *httptest.Server, user, body string) map[string]any {
	t.Helper()
	code, b := do(t, srv, http.MethodPost, "/jobs", user, body)
	require.Equal(t, http.StatusCreated, code, string(b))
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	code, b := do(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","service":"tracker-service","version":"test"}`, string(b))
}

func TestUnauthenticated(t *testing.T) {
	srv := newServer(t)
	for _, c := range []struct{ method, path string }{
		{http.MethodGet, "/jobs"},
		{http.MethodPost, "/jobs"},
		{http.MethodPatch, "/jobs/x"},
		{http.MethodDelete, "/jobs/x"},
		{http.MethodGet, "/views/board"},
	} {
		code, b := do(t, srv, c.method, c.path, "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, code, c.path)
		assert.Equal(t, "Unauthorized", errorOf(t, b))
	}
}

func TestCreate(t *testing.T) {
	srv := newServer(t)
	job := create(t, srv, "u1", `{"company":"Acme","role":"SWE","tags":"go, remote","oaDeadline":"2024-06-12T09:00"}`)

	assert.NotEmpty(t, job["id"])
	assert.Equal(t, "applied", job["status"])
	assert.Equal(t, "medium", job["priority"])
	assert.Equal(t, []any{"go", "remote"}, job["tags"])
	assert.Equal(t, "2024-06-12T09:00:00Z", job["oaDeadline"])
	assert.Nil(t, job["url"])
	assert.NotContains(t, job, "userId")
}

func TestCreate_Errors(t *testing.T) {
	srv := newServer(t)

	code, b := do(t, srv, http.MethodPost, "/jobs", "u1", `{"company":"Acme"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "company and role are required", errorOf(t, b))

	code, _ = do(t, srv, http.MethodPost, "/jobs", "u1", `{"company":"A","role":"B","status":"hired"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, b = do(t, srv, http.MethodPost, "/jobs", "u1", `{not json`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server error", errorOf(t, b))
}

func TestListScopedToCaller(t *testing.T) {
	srv := newServer(t)
	create(t, srv, "u1", `{"company":"Old","role":"R","dateApplied":"2024-01-01"}`)
	create(t, srv, "u1", `{"company":"New","role":"R","dateApplied":"2024-05-01"}`)
	create(t, srv, "u2", `{"company":"Theirs","role":"R"}`)

	code, b := do(t, srv, http.MethodGet, "/jobs", "u1", "")
	require.Equal(t, http.StatusOK, code)
	var jobs []map[string]any
	require.NoError(t, json.Unmarshal(b, &jobs))
	require.Len(t, jobs, 2)
	assert.Equal(t, "New", jobs[0]["company"])
	assert.Equal(t, "Old", jobs[1]["company"])

	code, b = do(t, srv, http.MethodGet, "/jobs", "nobody", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(b))
}

func TestPatch(t *testing.T) {
	srv := newServer(t)
	job := create(t, srv, "u1", `{"company":"Acme","role":"SWE","notes":"keep","url":"https://x"}`)
	path := "/jobs/" + job["id"].(string)

	code, b := do(t, srv, http.MethodPatch, path, "u1", `{"status":"interview","url":null}`)
	require.Equal(t, http.StatusOK, code, string(b))
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "interview", got["status"])
	assert.Nil(t, got["url"])
	assert.Equal(t, "keep", got["notes"])

	code, _ = do(t, srv, http.MethodPatch, path, "u2", `{"status":"selected"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, b = do(t, srv, http.MethodPatch, path, "u1", `{"company":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, errorOf(t, b))

	code, b = do(t, srv, http.MethodGet, path, "u1", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Acme", got["company"])
}

func TestDelete(t *testing.T) {
	srv := newServer(t)
	job := create(t, srv, "u1", `{"company":"Acme","role":"SWE"}`)
	path := "/jobs/" + job["id"].(string)

	code, _ := do(t, srv, http.MethodDelete, path, "u2", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, b := do(t, srv, http.MethodDelete, path, "u1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ok":true}`, string(b))

	code, b = do(t, srv, http.MethodDelete, path, "u1", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Job not found", errorOf(t, b))

	code, _ = do(t, srv, http.MethodPatch, path, "u1", `{"role":"X"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestViews(t *testing.T) {
	srv := newServer(t)
	create(t, srv, "u1", `{"company":"Acme","role":"Backend","status":"interview","oaDeadline":"2024-06-11T12:00:00Z"}`)
	create(t, srv, "u1", `{"company":"Globex","role":"SRE","priority":"high"}`)
	create(t, srv, "u1", `{"company":"Initech","role":"backend","status":"selected"}`)

	code, b := do(t, srv, http.MethodGet, "/views/table?q=BACK&status=all", "u1", "")
	require.Equal(t, http.StatusOK, code)
	var table struct {
		Jobs   []map[string]any `json:"jobs"`
		Counts []map[string]any `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(b, &table))
	assert.Len(t, table.Jobs, 2)
	assert.Len(t, table.Counts, 6)

	code, b = do(t, srv, http.MethodGet, "/views/board", "u1", "")
	require.Equal(t, http.StatusOK, code)
	var board struct {
		Columns []struct {
			Status string           `json:"status"`
			Cards  []map[string]any `json:"cards"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(b, &board))
	require.Len(t, board.Columns, 6)
	assert.Equal(t, "interview", board.Columns[3].Status)
	assert.Len(t, board.Columns[3].Cards, 1)

	code, b = do(t, srv, http.MethodGet, "/views/stats", "u1", "")
	require.Equal(t, http.StatusOK, code)
	var stats struct {
		Total     int `json:"total"`
		OfferRate int `json:"offerRate"`
	}
	require.NoError(t, json.Unmarshal(b, &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 33, stats.OfferRate)

	code, b = do(t, srv, http.MethodGet, "/views/upcoming", "u1", "")
	require.Equal(t, http.StatusOK, code)
	var upcoming []struct {
		Job     map[string]any   `json:"job"`
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(b, &upcoming))
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Acme", upcoming[0].Job["company"])
	assert.Equal(t, "OA", upcoming[0].Entries[0]["label"])
}
