// Package terms 从简历和JD中抽取关键词与技术术语
package terms

import (
	"regexp"
	"sort"
	"strings"

	"resume-matcher/internal/textproc"
	"resume-matcher/internal/types"
)

var wordPattern = regexp.MustCompile(`\b[a-z]{3,}\b`)

// ExtractKeywords 按频率抽取关键词。
// 文本转小写后取长度不小于3的纯字母词，与相邻二元、三元词组一起计数，
// 去掉含停用词的术语，按频率降序返回前 topN 个，频率相同时保持首次出现的顺序。
func ExtractKeywords(text string, topN int) []string {
	if topN <= 0 {
		return []string{}
	}
	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	counts := make(map[string]int)
	order := make([]string, 0, len(words))
	add := func(term string) {
		if len(term) <= 2 || textproc.ContainsStopWord(term) {
			return
		}
		if _, seen := counts[term]; !seen {
			order = append(order, term)
		}
		counts[term]++
	}

	for _, w := range words {
		add(w)
	}
	for i := 0; i+1 < len(words); i++ {
		add(words[i] + " " + words[i+1])
	}
	for i := 0; i+2 < len(words); i++ {
		add(words[i] + " " + words[i+1] + " " + words[i+2])
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

// ExtractAll 合并频率关键词（来自规范化文本）和技术术语（来自原始文本）。
// 顺序为关键词在前、技术术语按发现顺序在后，重复项只保留一次。
func ExtractAll(doc types.Document, topN int) *types.TermSet {
	set := types.NewTermSet(ExtractKeywords(doc.NormalizedText, topN)...)
	for _, term := range ExtractTechnicalTerms(doc.RawText) {
		set.Add(term)
	}
	return set
}
