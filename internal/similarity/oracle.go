// Package similarity 定义语义相似度的统一接口以及基于向量模型的实现
package similarity

import (
	"context"
	"math"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"

	"resume-matcher/internal/logger"
)

// Oracle 语义相似度来源。返回值越大越相似（余弦相似度，通常在 [0,1]），
// 实现内部的失败一律按 0 处理，不向调用方返回错误。
type Oracle interface {
	// Similarity 两段文本的相似度
	Similarity(ctx context.Context, a, b string) float64
	// Similarities query 与每个候选文本的相似度，顺序与 candidates 一致
	Similarities(ctx context.Context, query string, candidates []string) []float64
	// BestMatches 每个 query 与 corpus 中最相似文本的相似度，顺序与 queries 一致
	BestMatches(ctx context.Context, queries, corpus []string) []float64
}

// Cosine 余弦相似度；维度不一致或存在零向量时为 0
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, c))
}

// EmbeddingOracle 基于 embedding.Embedder 的相似度实现，每次调用只请求一次向量模型
type EmbeddingOracle struct {
	embedder embedding.Embedder
	logger   zerolog.Logger
}

// NewEmbeddingOracle 创建相似度实现
func NewEmbeddingOracle(e embedding.Embedder) *EmbeddingOracle {
	return &EmbeddingOracle{
		embedder: e,
		logger:   logger.Component("similarity"),
	}
}

// embed 对去重后的非空文本批量编码，返回 文本 -> 向量；失败时返回 nil
func (o *EmbeddingOracle) embed(ctx context.Context, texts []string) map[string][]float64 {
	unique := make([]string, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	if len(unique) == 0 {
		return nil
	}

	vectors, err := o.embedder.EmbedStrings(ctx, unique)
	if err != nil {
		o.logger.Warn().Err(err).Int("texts", len(unique)).Msg("向量计算失败，相似度按0处理")
		return nil
	}
	if len(vectors) != len(unique) {
		o.logger.Warn().Int("texts", len(unique)).Int("vectors", len(vectors)).Msg("向量数量不匹配，相似度按0处理")
		return nil
	}

	out := make(map[string][]float64, len(unique))
	for i, t := range unique {
		out[t] = vectors[i]
	}
	return out
}

// Similarity 实现 Oracle
func (o *EmbeddingOracle) Similarity(ctx context.Context, a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	vectors := o.embed(ctx, []string{a, b})
	if vectors == nil {
		return 0
	}
	return Cosine(vectors[a], vectors[b])
}

// Similarities 实现 Oracle
func (o *EmbeddingOracle) Similarities(ctx context.Context, query string, candidates []string) []float64 {
	scores := make([]float64, len(candidates))
	if strings.TrimSpace(query) == "" || len(candidates) == 0 {
		return scores
	}
	vectors := o.embed(ctx, append([]string{query}, candidates...))
	if vectors == nil {
		return scores
	}
	q := vectors[query]
	for i, c := range candidates {
		if v, ok := vectors[c]; ok {
			scores[i] = Cosine(q, v)
		}
	}
	return scores
}

// BestMatches 实现 Oracle
func (o *EmbeddingOracle) BestMatches(ctx context.Context, queries, corpus []string) []float64 {
	best := make([]float64, len(queries))
	if len(queries) == 0 || len(corpus) == 0 {
		return best
	}
	all := make([]string, 0, len(queries)+len(corpus))
	all = append(all, queries...)
	all = append(all, corpus...)
	vectors := o.embed(ctx, all)
	if vectors == nil {
		return best
	}

	corpusVectors := make([][]float64, 0, len(corpus))
	for _, c := range corpus {
		if v, ok := vectors[c]; ok {
			corpusVectors = append(corpusVectors, v)
		}
	}
	for i, q := range queries {
		qv, ok := vectors[q]
		if !ok || len(corpusVectors) == 0 {
			continue
		}
		top := math.Inf(-1)
		for _, cv := range corpusVectors {
			if s := Cosine(qv, cv); s > top {
				top = s
			}
		}
		best[i] = top
	}
	return best
}
