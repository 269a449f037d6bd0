package terms

import (
	"sort"
	"strings"

	"resume-matcher/internal/textproc"
)

// RankMatched 按 简历出现次数 + 2×JD出现次数 排序已匹配术语，保留前 limit 个
func RankMatched(matched []string, resumeText, jdText string, limit int) []string {
	resumeLower := strings.ToLower(resumeText)
	jdLower := strings.ToLower(jdText)
	return rankBy(matched, limit, func(term string) int {
		return occurrences(resumeLower, term) + 2*occurrences(jdLower, term)
	})
}

// RankMissing 按 JD 出现次数排序缺失术语，保留前 limit 个
func RankMissing(missing []string, jdText string, limit int) []string {
	jdLower := strings.ToLower(jdText)
	return rankBy(missing, limit, func(term string) int {
		return occurrences(jdLower, term)
	})
}

// occurrences 统计不重叠的子串出现次数。textLower 是已转小写的规范化文本，
// term 先按同样的规则规范化，例如 "r&d" 在文本中是 "r d"。
func occurrences(textLower, term string) int {
	term = strings.ToLower(textproc.Normalize(term))
	if term == "" {
		return 0
	}
	return strings.Count(textLower, term)
}

func rankBy(terms []string, limit int, score func(string) int) []string {
	if limit <= 0 {
		return []string{}
	}
	scores := make(map[string]int, len(terms))
	ranked := make([]string, len(terms))
	copy(ranked, terms)
	for _, t := range ranked {
		scores[t] = score(t)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
