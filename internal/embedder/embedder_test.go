package embedder

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/config"
	"resume-matcher/pkg/ratelimit"
)

func errorsAs(err error, target any) bool {
	return errors.As(err, target)
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestLexicalEmbedderStemsAndIgnoresStopWords(t *testing.T) {
	e := NewLexicalEmbedder(0)
	vectors, err := e.EmbedStrings(context.Background(), []string{
		"managed the teams",
		"managing team",
		"",
	})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	assert.InDelta(t, 1.0, cosine(vectors[0], vectors[1]), 1e-9, "词干相同应完全相似")
	assert.Equal(t, 0.0, cosine(vectors[0], vectors[2]), "空文本相似度为0")
	assert.Len(t, vectors[0], defaultLexicalDimensions)
}

func TestLexicalEmbedderDeterministic(t *testing.T) {
	e := NewLexicalEmbedder(256)
	a, err := e.EmbedStrings(context.Background(), []string{"Kubernetes and Go microservices"})
	require.NoError(t, err)
	b, err := e.EmbedStrings(context.Background(), []string{"Kubernetes and Go microservices"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLexicalEmbedderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLexicalEmbedder(0).EmbedStrings(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStemKeepsTechnicalTokens(t *testing.T) {
	assert.Equal(t, "c++", stem("c++"))
	assert.Equal(t, "k8s", stem("k8s"))
	assert.Equal(t, "go", stem("go"))
	assert.Equal(t, stem("developer"), stem("developers"))
}

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]float64
	getErr  error
	setErr  error
	setCall int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]float64{}}
}

func (m *memoryCache) GetVectors(_ context.Context, model string, keys []string) (map[string][]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := map[string][]float64{}
	for _, k := range keys {
		if v, ok := m.data[model+"|"+k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memoryCache) SetVectors(_ context.Context, model string, vectors map[string][]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	for k, v := range vectors {
		m.data[model+"|"+k] = v
	}
	return nil
}

type countingEmbedder struct {
	calls int
	texts []string
	err   error
}

func (c *countingEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	c.calls++
	c.texts = append(c.texts, texts...)
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t))}
	}
	return out, nil
}

func TestCachedEmbedderOnlyEmbedsMisses(t *testing.T) {
	cache := newMemoryCache()
	next := &countingEmbedder{}
	e := NewCachedEmbedder(next, cache, "m1")

	first, err := e.EmbedStrings(context.Background(), []string{"go", "rust", "go"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2}, {4}, {2}}, first)
	assert.Equal(t, []string{"go", "rust"}, next.texts, "重复文本只计算一次")

	second, err := e.EmbedStrings(context.Background(), []string{"rust", "python"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{4}, {6}}, second)
	assert.Equal(t, []string{"go", "rust", "python"}, next.texts, "命中缓存的文本不再计算")
}

func TestCachedEmbedderModelIsolation(t *testing.T) {
	cache := newMemoryCache()
	next := &countingEmbedder{}

	_, err := NewCachedEmbedder(next, cache, "m1").EmbedStrings(context.Background(), []string{"go"})
	require.NoError(t, err)
	_, err = NewCachedEmbedder(next, cache, "m2").EmbedStrings(context.Background(), []string{"go"})
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls, "模型不同不应复用缓存")
}

func TestCachedEmbedderCacheFailuresAreNotFatal(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	next := &countingEmbedder{}

	vectors, err := NewCachedEmbedder(next, cache, "m").EmbedStrings(context.Background(), []string{"abc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3}}, vectors)
	assert.Equal(t, 1, cache.setCall)
}

func TestCachedEmbedderPropagatesEmbedError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewCachedEmbedder(&countingEmbedder{err: boom}, newMemoryCache(), "m").
		EmbedStrings(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, boom)
}

type flakyEmbedder struct {
	failures int
	calls    int
}

func (f *flakyEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, ratelimit.Retryable(errors.New("503"))
	}
	return make([][]float64, len(texts)), nil
}

func TestRateLimitedEmbedderRetries(t *testing.T) {
	next := &flakyEmbedder{failures: 1}
	e := NewRateLimitedEmbedder(next, 0, 2)

	vectors, err := e.EmbedStrings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, 2, next.calls)
}

func TestBuild(t *testing.T) {
	e, model, err := Build(config.EmbeddingConfig{Provider: "lexical"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LexicalEmbedder{}, e)
	assert.Equal(t, LexicalModel, model)

	e, model, err = Build(config.EmbeddingConfig{Provider: "openai", APIKey: "k", BaseURL: "http://localhost", Model: "m", QPM: 60}, newMemoryCache())
	require.NoError(t, err)
	assert.IsType(t, &CachedEmbedder{}, e)
	assert.Equal(t, "m", model)

	_, _, err = Build(config.EmbeddingConfig{Provider: "openai"}, nil)
	assert.Error(t, err)

	_, _, err = Build(config.EmbeddingConfig{Provider: "word2vec"}, nil)
	assert.Error(t, err)
}
