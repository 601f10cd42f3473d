package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthHeaders(t *testing.T) {
	c := New("")
	h := c.authHeaders()
	require.Equal(t, "application/json", h.Get("Content-Type"))
	require.Empty(t, h.Get("Authorization"))

	c = New("", WithTokenProvider(StaticToken("abc")))
	require.Equal(t, "Bearer abc", c.authHeaders().Get("Authorization"))

	c = New("", WithTokenProvider(StaticToken("")))
	require.Empty(t, c.authHeaders().Get("Authorization"))
}

func TestNewDefaultsBaseURL(t *testing.T) {
	require.Equal(t, DefaultBaseURL, New("").baseURL)
	require.Equal(t, "http://example.com", New("http://example.com/").baseURL)
}

func TestErrorMessageParsing(t *testing.T) {
	require.Equal(t, "boom", errorMessage([]byte(`{"detail": "boom"}`), 400))
	require.Equal(t, "oops", errorMessage([]byte(`{"message": "oops"}`), 400))
	require.Equal(t, "boom", errorMessage([]byte(`{"detail": "boom", "message": "oops"}`), 400))
	require.Equal(t, "Bad Request", errorMessage([]byte(`plain text`), 400))
	require.Equal(t, "Internal Server Error", errorMessage(nil, 500))
}

func TestAPICallErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Invalid or expired token"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.apiCall(context.Background(), http.MethodGet, "/classes", nil, nil)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Invalid or expired token", apiErr.Message)
	require.Contains(t, apiErr.Error(), "401")
}

func TestAPICallSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "x", body["name"])
		w.Write([]byte(`{"echo": "x"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var out struct {
		Echo string `json:"echo"`
	}
	err := c.apiCall(context.Background(), http.MethodPost, "/t", map[string]string{"name": "x"}, &out)
	require.NoError(t, err)
	require.Equal(t, "x", out.Echo)
}
