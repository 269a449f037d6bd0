package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"

	"resume-matcher/internal/logger"
)

// VectorCache 以内容哈希为键的向量缓存
type VectorCache interface {
	// GetVectors 返回命中的向量，未命中或模型不一致的键不出现在结果中
	GetVectors(ctx context.Context, model string, keys []string) (map[string][]float64, error)
	// SetVectors 写入向量并记录模型名
	SetVectors(ctx context.Context, model string, vectors map[string][]float64) error
}

// ContentKey 文本内容的缓存键
func ContentKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CachedEmbedder 先查缓存，只对未命中的文本调用下游模型。缓存读写失败只记录日志。
type CachedEmbedder struct {
	next   embedding.Embedder
	cache  VectorCache
	model  string
	logger zerolog.Logger
}

// NewCachedEmbedder 创建带缓存的向量模型
func NewCachedEmbedder(next embedding.Embedder, cache VectorCache, model string) *CachedEmbedder {
	return &CachedEmbedder{
		next:   next,
		cache:  cache,
		model:  model,
		logger: logger.Component("cached_embedder"),
	}
}

// EmbedStrings 实现 embedding.Embedder
func (c *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	model := c.model
	if options := embedding.GetCommonOptions(&embedding.Options{}, opts...); options.Model != nil && *options.Model != "" {
		model = *options.Model
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = ContentKey(t)
	}

	hits, err := c.cache.GetVectors(ctx, model, keys)
	if err != nil {
		c.logger.Warn().Err(err).Int("keys", len(keys)).Msg("读取向量缓存失败，全部重新计算")
		hits = nil
	}

	var missTexts []string
	var missKeys []string
	pending := make(map[string]struct{})
	for i, key := range keys {
		if _, ok := hits[key]; ok {
			continue
		}
		if _, ok := pending[key]; ok {
			continue
		}
		pending[key] = struct{}{}
		missTexts = append(missTexts, texts[i])
		missKeys = append(missKeys, key)
	}

	fresh := make(map[string][]float64, len(missKeys))
	if len(missTexts) > 0 {
		vectors, err := c.next.EmbedStrings(ctx, missTexts, opts...)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(missTexts) {
			return nil, fmt.Errorf("向量数量不匹配: 请求 %d 条, 返回 %d 条", len(missTexts), len(vectors))
		}
		for i, key := range missKeys {
			fresh[key] = vectors[i]
		}
		if err := c.cache.SetVectors(ctx, model, fresh); err != nil {
			c.logger.Warn().Err(err).Int("vectors", len(fresh)).Msg("写入向量缓存失败")
		}
	}

	c.logger.Debug().Int("texts", len(texts)).Int("hits", len(texts)-len(missTexts)).Msg("向量缓存查询完成")

	out := make([][]float64, len(texts))
	for i, key := range keys {
		if v, ok := hits[key]; ok {
			out[i] = v
		} else {
			out[i] = fresh[key]
		}
	}
	return out, nil
}
