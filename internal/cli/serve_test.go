package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/odataq"
	"github.com/roach88/odataq/internal/store"
	"github.com/roach88/odataq/internal/testutil"
)

func serveRequest(t *testing.T, h http.Handler, target string) (int, CLIResponse, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var raw struct {
		CLIResponse
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	return resp.StatusCode, raw.CLIResponse, raw.Data
}

func TestServe_Translate(t *testing.T) {
	h := newHandler(&translator{maxDepth: odataq.DefaultMaxDepth})

	status, resp, data := serveRequest(t, h, "/translate/People?$filter=Age%20gt%2030&$top=3")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "People", data["collection"])
	assert.Equal(t, map[string]any{"Age": map[string]any{"$gt": float64(30)}}, data["query"])
	assert.Equal(t, float64(3), data["limit"])
}

func TestServe_TranslateWithoutOptions(t *testing.T) {
	h := newHandler(&translator{maxDepth: odataq.DefaultMaxDepth})

	status, _, data := serveRequest(t, h, "/translate/People")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "People", data["collection"])
	assert.Equal(t, map[string]any{}, data["query"])
}

func TestServe_Filter(t *testing.T) {
	h := newHandler(&translator{maxDepth: odataq.DefaultMaxDepth})

	status, resp, data := serveRequest(t, h, "/filter?$filter=startswith(Name,'A')")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{
		"Name": map[string]any{
			"$regularExpression": map[string]any{"pattern": "^A", "options": "i"},
		},
	}, data)
}

func TestServe_FilterEncodedKey(t *testing.T) {
	h := newHandler(&translator{maxDepth: odataq.DefaultMaxDepth})

	status, _, data := serveRequest(t, h, "/filter?%24filter=A%20eq%201")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"A": map[string]any{"$eq": float64(1)}}, data)
}

func TestServe_Errors(t *testing.T) {
	h := newHandler(&translator{maxDepth: odataq.DefaultMaxDepth})

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"missing filter", "/filter", http.StatusBadRequest, CodeGeneric},
		{"parse error", "/filter?$filter=Name%20eq", http.StatusBadRequest, CodeParse},
		{"unsupported method", "/filter?$filter=length(Name)%20eq%203", http.StatusUnprocessableEntity, CodeUnsupported},
		{"query parse error", "/translate/People?$filter=(A", http.StatusBadRequest, CodeParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp, _ := serveRequest(t, h, tt.target)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestServe_TooComplex(t *testing.T) {
	h := newHandler(&translator{maxDepth: 2})

	status, resp, _ := serveRequest(t, h, "/translate/People?$expand=Trips($filter=((A%20eq%201)))")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTooComplex, resp.Error.Code)
}

func TestServe_MethodNotAllowed(t *testing.T) {
	h := newHandler(&translator{maxDepth: odataq.DefaultMaxDepth})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/filter?$filter=A%20eq%201", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServe_CachesInStore(t *testing.T) {
	st, err := store.Open(testutil.TempDB(t))
	require.NoError(t, err)
	defer st.Close()

	h := newHandler(&translator{maxDepth: odataq.DefaultMaxDepth, store: st})
	for range 2 {
		status, _, _ := serveRequest(t, h, "/filter?$filter=A%20eq%201")
		require.Equal(t, http.StatusOK, status)
	}

	entries, err := st.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.ModeFilter, entries[0].Mode)
	assert.Equal(t, "A eq 1", entries[0].Input)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestRawParam(t *testing.T) {
	tests := []struct {
		raw   string
		value string
		found bool
	}{
		{"$filter=A%20eq%201", "A eq 1", true},
		{"$top=1&$filter=A+eq+1", "A+eq+1", true},
		{"%24filter=x", "x", true},
		{"$top=1", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		value, found := rawParam(tt.raw, "$filter")
		assert.Equal(t, tt.found, found, tt.raw)
		assert.Equal(t, tt.value, value, tt.raw)
	}
}
