package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/titlematch/internal/catalog"
	"github.com/lehigh-university-libraries/titlematch/internal/config"
	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

func testServer(t *testing.T, maxQueries int) http.Handler {
	t.Helper()
	idx, err := catalog.NewIndex([]catalog.BookRow{
		{ID: 1, Title: "Harry Potter and the Philosopher's Stone", Author: "J.K. Rowling", Popularity: 100, SeriesID: 10, BookNumber: "1", Pages: 223},
		{ID: 4, Title: "The Hobbit", Author: "J.R.R. Tolkien", Popularity: 90},
	}, []catalog.SeriesRow{
		{ID: 10, Title: "Harry Potter", Author: "J.K. Rowling", Popularity: 120},
	})
	require.NoError(t, err)
	m, err := matching.New(idx, config.DefaultMatching())
	require.NoError(t, err)

	mux := http.NewServeMux()
	New(matching.NewHolder(m), maxQueries).Routes(mux)
	return WithRequestID(mux)
}

func TestHandleResolveGet(t *testing.T) {
	srv := testServer(t, 0)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/resolve?q=the+hobbit", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var res matching.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, int64(4), res.ID)
	assert.True(t, res.Valid)
	assert.Equal(t, "the hobbit", res.Query)
}

func TestHandleResolveGetInfo(t *testing.T) {
	srv := testServer(t, 0)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/resolve?q=harry+potter+by+rowling", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["is_series"])
	assert.Equal(t, float64(10), body["series_id"])
	info, ok := body["info"].(map[string]any)
	require.True(t, ok, "info forwarded for the winning book")
	assert.Equal(t, float64(223), info["pages"])
}

func TestHandleResolvePost(t *testing.T) {
	srv := testServer(t, 2)

	body := `{"queries": ["The Hobbit"], "text": "also {{zzzz qqqq xxxx}} and {{dune}}"}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/resolve", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2, "capped at max queries")
	assert.Equal(t, int64(4), resp.Results[0].ID)
	assert.True(t, resp.Results[0].Valid)
	assert.Equal(t, "zzzz qqqq xxxx", resp.Results[1].Query)
	assert.False(t, resp.Results[1].Valid)
}

func TestHandleResolveErrors(t *testing.T) {
	srv := testServer(t, 0)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   int
	}{
		{name: "missing q", method: http.MethodGet, target: "/api/resolve", code: http.StatusBadRequest},
		{name: "bad json", method: http.MethodPost, target: "/api/resolve", body: "{", code: http.StatusBadRequest},
		{name: "no queries", method: http.MethodPost, target: "/api/resolve", body: `{"queries": []}`, code: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodDelete, target: "/api/resolve", code: http.StatusMethodNotAllowed},
		{name: "stats wrong method", method: http.MethodPost, target: "/api/stats", code: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestHandleStats(t *testing.T) {
	srv := testServer(t, 0)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats catalog.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Books)
	assert.Equal(t, 1, stats.Series)
}

func TestRequestID(t *testing.T) {
	srv := testServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	var seen string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}
