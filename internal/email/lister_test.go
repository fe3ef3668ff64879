package email_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-web/internal/email"
)

const listResponse = `{"object":"list","data":[{"id":"4ef9a417","to":["reader@example.com"],"subject":"Welcome"}]}`

func TestLister_ListRaw(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listResponse))
	}))
	defer server.Close()

	lister, err := email.NewLister("re_test_key", server.URL)
	require.NoError(t, err)

	raw, err := lister.ListRaw(t.Context())
	require.NoError(t, err)
	assert.JSONEq(t, listResponse, string(raw))
	assert.Equal(t, 1, calls)
}

func TestLister_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"statusCode":401,"message":"API key is invalid","name":"validation_error"}`))
	}))
	defer server.Close()

	lister, err := email.NewLister("re_bad_key", server.URL+"/")
	require.NoError(t, err)

	_, err = lister.ListRaw(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list emails")
}

func TestNewLister_RequiresAPIKey(t *testing.T) {
	_, err := email.NewLister("  ", "")
	require.ErrorIs(t, err, email.ErrMissingAPIKey)
}

func TestPretty(t *testing.T) {
	out := string(email.Pretty([]byte(`{"object":"list","data":[]}`)))
	assert.Equal(t, "{\n  \"object\": \"list\",\n  \"data\": []\n}\n", out)
}
