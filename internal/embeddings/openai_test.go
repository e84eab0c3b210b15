package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobtrail/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.EmbeddingConfig{
		BaseURL:   url,
		APIKey:    "test-key",
		Model:     "text-embedding-ada-002",
		TimeoutMs: 2000,
	})
}

func TestClient_Embed_Success(t *testing.T) {
	var gotAuth string
	var gotBody embeddingRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer srv.Close()

	vec, err := newTestClient(srv.URL).Embed(context.Background(), "golang backend engineer")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "golang backend engineer", gotBody.Input)
	assert.Equal(t, "text-embedding-ada-002", gotBody.Model)
}

func TestClient_Embed_EmptyQueryStillSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float32{0.5}}},
		})
	}))
	defer srv.Close()

	vec, err := newTestClient(srv.URL).Embed(context.Background(), "")

	require.NoError(t, err)
	assert.NotEmpty(t, vec)
}

func TestClient_Embed_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "upstream error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data": []}`))
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv.URL).Embed(context.Background(), "query")

			assert.ErrorIs(t, err, ErrEmbeddingFailed)
		})
	}
}

func TestClient_Embed_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).Embed(context.Background(), "query")

	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}
