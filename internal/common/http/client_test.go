package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "token abc", r.Header.Get("Authorization"))
			var in map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["name"]})
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("slow down\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	ctx := context.Background()

	var out map[string]string
	err := c.DoJSON(ctx, http.MethodPost, srv.URL+"/echo", http.Header{"Authorization": {"token abc"}}, map[string]string{"name": "ada"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ada", out["echo"])

	require.NoError(t, c.DoJSON(ctx, http.MethodDelete, srv.URL+"/empty", nil, nil, &out))

	err = c.DoJSON(ctx, http.MethodGet, srv.URL+"/limited", nil, nil, nil)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "slow down", statusErr.Body)
	assert.True(t, statusErr.Transient())

	err = c.DoJSON(ctx, http.MethodGet, srv.URL+"/missing", nil, nil, nil)
	require.ErrorAs(t, err, &statusErr)
	assert.False(t, statusErr.Transient())
}
