// Package highlights 从简历中挑选与JD最相关的句子
package highlights

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"resume-matcher/internal/similarity"
)

const (
	minSentenceLength = 20
	metricBoost       = 1.15
	actionVerbBoost   = 1.1
)

var (
	sentenceBreak = regexp.MustCompile(`[.!?]+`)
	hasDigit      = regexp.MustCompile(`\d`)
	actionVerb    = regexp.MustCompile(`\b(?:developed|created|designed|implemented|managed|led|built|achieved|improved|increased|reduced)\b`)
)

// Sentences 按 . ! ? 切分文本，去掉首尾空白后保留长度不小于20的片段
func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceBreak.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) >= minSentenceLength {
			out = append(out, s)
		}
	}
	return out
}

// Score 句子与JD的相似度乘以加权：含数字 ×1.15，含动作动词 ×1.1，可叠加
func Score(sentence string, sim float64) float64 {
	if hasDigit.MatchString(sentence) {
		sim *= metricBoost
	}
	if actionVerb.MatchString(strings.ToLower(sentence)) {
		sim *= actionVerbBoost
	}
	return sim
}

// Select 返回得分最高的 topN 个句子，得分相同时保持原文顺序
func Select(ctx context.Context, oracle similarity.Oracle, resumeText, jdText string, topN int) []string {
	sentences := Sentences(resumeText)
	if len(sentences) == 0 || topN <= 0 {
		return []string{}
	}

	sims := oracle.Similarities(ctx, jdText, sentences)
	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		var sim float64
		if i < len(sims) {
			sim = sims[i]
		}
		ranked[i] = scored{text: s, score: Score(s, sim)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.text
	}
	return out
}
