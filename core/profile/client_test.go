package profile

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientPostsDocumentedBodies(t *testing.T) {
	type call struct {
		path string
		body map[string]any
	}
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		calls = append(calls, call{r.URL.Path, body})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()
	require.NoError(t, c.AddFavorite(ctx, "u1", 11))
	require.NoError(t, c.DeleteFavorite(ctx, "u1", 12))
	require.NoError(t, c.ClearFavorites(ctx, "u1"))
	require.NoError(t, c.AddHistory(ctx, "u1", 13))
	require.NoError(t, c.ClearHistory(ctx, "u1"))

	require.Len(t, calls, 5)
	assert.Equal(t, "/favorites/add", calls[0].path)
	assert.Equal(t, map[string]any{"userId": "u1", "musicId": float64(11)}, calls[0].body)
	assert.Equal(t, "/favorites/delete", calls[1].path)
	assert.Equal(t, "/favorites/clear", calls[2].path)
	assert.Equal(t, map[string]any{"userId": "u1"}, calls[2].body)
	assert.Equal(t, "/history/add", calls[3].path)
	assert.Equal(t, float64(13), calls[3].body["musicId"])
	assert.Equal(t, "/history/clear", calls[4].path)
}

func TestClientNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).ClearHistory(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrRemoteStatus)
}
