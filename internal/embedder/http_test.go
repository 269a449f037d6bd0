package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/config"
	"resume-matcher/pkg/ratelimit"
)

// newEmbeddingServer 返回一个把每条文本编码为 [len(text), index] 的假服务，返回数据按 index 倒序排列
func newEmbeddingServer(t *testing.T, requests *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req embeddingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := embeddingResponse{Object: "list", Model: req.Model}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingData{
				Index:     i,
				Embedding: []float64{float64(len(req.Input[i])), float64(i)},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPEmbedderBatchesAndOrders(t *testing.T) {
	var requests int32
	srv := newEmbeddingServer(t, &requests)
	defer srv.Close()

	e, err := NewHTTPEmbedder(config.EmbeddingConfig{APIKey: "sk-test", BaseURL: srv.URL, BatchSize: 2})
	require.NoError(t, err)

	vectors, err := e.EmbedStrings(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&requests), "3条文本按2条一批应发2次请求")
	require.Len(t, vectors, 3)
	assert.Equal(t, []float64{1, 0}, vectors[0])
	assert.Equal(t, []float64{2, 1}, vectors[1])
	assert.Equal(t, []float64{3, 0}, vectors[2])
}

func TestHTTPEmbedderModelOption(t *testing.T) {
	var seenModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		seenModel = req.Model
		_ = json.NewEncoder(w).Encode(embeddingResponse{Data: []embeddingData{{Index: 0, Embedding: []float64{1}}}})
	}))
	defer srv.Close()

	e, err := NewHTTPEmbedder(config.EmbeddingConfig{APIKey: "k", BaseURL: srv.URL, Model: "default-model"})
	require.NoError(t, err)

	_, err = e.EmbedStrings(context.Background(), []string{"x"}, embedding.WithModel("override"))
	require.NoError(t, err)
	assert.Equal(t, "override", seenModel)
}

func TestHTTPEmbedderErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
	}{
		{name: "限流", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate_limit"}}`, retryable: true},
		{name: "服务端错误", status: http.StatusBadGateway, body: `oops`, retryable: true},
		{name: "参数错误", status: http.StatusBadRequest, body: `{"error":{"message":"bad input","type":"invalid_request"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			e, err := NewHTTPEmbedder(config.EmbeddingConfig{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = e.EmbedStrings(context.Background(), []string{"x"})
			require.Error(t, err)
			var re *ratelimit.RetryableError
			assert.Equal(t, tt.retryable, errorsAs(err, &re))
		})
	}
}

func TestHTTPEmbedderCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embeddingResponse{})
	}))
	defer srv.Close()

	e, err := NewHTTPEmbedder(config.EmbeddingConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = e.EmbedStrings(context.Background(), []string{"x", "y"})
	assert.ErrorContains(t, err, "向量数量不匹配")
}

func TestNewHTTPEmbedderValidation(t *testing.T) {
	_, err := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: "http://x"})
	assert.Error(t, err)
	_, err = NewHTTPEmbedder(config.EmbeddingConfig{APIKey: "k"})
	assert.Error(t, err)
}
