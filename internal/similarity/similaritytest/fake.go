// Package similaritytest 提供测试用的确定性相似度实现
package similaritytest

import (
	"context"
	"strings"
)

// Oracle 由 Score 函数计算相似度的假实现
type Oracle struct {
	Score func(a, b string) float64
}

// Similarity 实现 similarity.Oracle
func (o Oracle) Similarity(_ context.Context, a, b string) float64 {
	return o.Score(a, b)
}

// Similarities 实现 similarity.Oracle
func (o Oracle) Similarities(_ context.Context, query string, candidates []string) []float64 {
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		out[i] = o.Score(query, c)
	}
	return out
}

// BestMatches 实现 similarity.Oracle
func (o Oracle) BestMatches(_ context.Context, queries, corpus []string) []float64 {
	out := make([]float64, len(queries))
	for i, q := range queries {
		for j, c := range corpus {
			if s := o.Score(q, c); j == 0 || s > out[i] {
				out[i] = s
			}
		}
	}
	return out
}

// Constant 所有文本对都返回 v
func Constant(v float64) Oracle {
	return Oracle{Score: func(string, string) float64 { return v }}
}

// Exact 忽略大小写完全相同时为 1，否则为 0
func Exact() Oracle {
	return Oracle{Score: func(a, b string) float64 {
		if strings.TrimSpace(a) != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
			return 1
		}
		return 0
	}}
}

// Overlap 小写词集合的 Jaccard 系数
func Overlap() Oracle {
	return Oracle{Score: func(a, b string) float64 {
		wa := wordSet(a)
		wb := wordSet(b)
		if len(wa) == 0 || len(wb) == 0 {
			return 0
		}
		inter := 0
		for w := range wa {
			if _, ok := wb[w]; ok {
				inter++
			}
		}
		return float64(inter) / float64(len(wa)+len(wb)-inter)
	}}
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?()")
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
