package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyClient_GetDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("t"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	var out struct {
		Status string `json:"status"`
	}
	client := New(srv.URL, time.Second, "secret")
	resp, err := client.Get(context.Background(), "/latest", map[string]string{"t": "1"}, nil, &out)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "success", out.Status)
}

func TestRestyClient_PostReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, "")
	resp, err := client.Post(context.Background(), "/chat", map[string]string{"a": "b"}, nil, nil)
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
