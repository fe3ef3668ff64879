package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-web/internal/email"
)

func TestRun(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_cli_key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"4ef9a417"}]}`))
	}))
	defer server.Close()

	var stdout bytes.Buffer
	require.NoError(t, run(t.Context(), &stdout, "re_cli_key", server.URL))

	assert.Equal(t, 1, calls)
	assert.Equal(t,
		"{\n  \"object\": \"list\",\n  \"data\": [\n    {\n      \"id\": \"4ef9a417\"\n    }\n  ]\n}\n",
		stdout.String(),
	)
}

func TestRun_MissingAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request should be made without an API key")
	}))
	defer server.Close()

	var stdout bytes.Buffer
	err := run(t.Context(), &stdout, "", server.URL)

	require.ErrorIs(t, err, email.ErrMissingAPIKey)
	assert.Empty(t, stdout.String())
}

func TestRun_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"statusCode":401,"message":"API key is invalid","name":"validation_error"}`))
	}))
	defer server.Close()

	var stdout bytes.Buffer
	err := run(t.Context(), &stdout, "re_bad_key", server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list emails")
	assert.Empty(t, stdout.String())
}
