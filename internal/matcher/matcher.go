// Package matcher 把JD术语按与简历术语的语义相似度划分为已匹配和缺失两组
package matcher

import (
	"context"

	"resume-matcher/internal/similarity"
	"resume-matcher/internal/types"
)

// Match 对每个JD术语取其与所有简历术语的最大相似度，达到 threshold 即为已匹配。
// 结果两组都保持JD术语的原有顺序，互不相交且并集等于 jdTerms。
// 任一侧为空时不调用 oracle，所有JD术语都视为缺失。
func Match(ctx context.Context, oracle similarity.Oracle, resumeTerms, jdTerms []string, threshold float64) types.MatchResult {
	result := types.MatchResult{
		Matched: []string{},
		Missing: []string{},
	}
	if len(resumeTerms) == 0 || len(jdTerms) == 0 {
		result.Missing = append(result.Missing, jdTerms...)
		return result
	}

	best := oracle.BestMatches(ctx, jdTerms, resumeTerms)
	for i, term := range jdTerms {
		if i < len(best) && best[i] >= threshold {
			result.Matched = append(result.Matched, term)
		} else {
			result.Missing = append(result.Missing, term)
		}
	}
	return result
}
