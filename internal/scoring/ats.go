// Package scoring 计算 ATS 兼容性分数和综合匹配度
package scoring

import (
	"regexp"
	"strings"

	"resume-matcher/internal/config"
	"resume-matcher/internal/types"
)

const contextualPhraseLimit = 15

var (
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern    = regexp.MustCompile(`\b\d{10}\b|\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	threeWordPhrase = regexp.MustCompile(`\b\w+\s+\w+\s+\w+\b`)

	requiredSections = []types.SectionName{
		types.SectionEducation,
		types.SectionExperience,
		types.SectionSkills,
	}
)

const (
	minFormattedLength = 500
	minFormattedLines  = 10
)

// ATSInput ATS 评分所需的全部输入
type ATSInput struct {
	Resume             types.Document
	JD                 types.Document
	Sections           types.Sections
	MatchedCount       int
	JDTermCount        int
	SemanticSimilarity float64
}

// ATSScore 计算 ATS 分数（0-100，未取整）及各分项
func ATSScore(in ATSInput, weights config.ATSWeightsConfig) (float64, types.ATSBreakdown) {
	var b types.ATSBreakdown
	if in.JDTermCount > 0 {
		b.KeywordMatch = float64(in.MatchedCount) / float64(in.JDTermCount) * weights.KeywordMatch
	}
	b.SemanticSimilarity = in.SemanticSimilarity * weights.SemanticSimilarity
	b.SectionCompleteness = SectionCompleteness(in.Sections) * weights.SectionCompleteness
	b.ContactInfo = ContactInfo(in.Resume.RawText) * weights.ContactInfo
	b.Formatting = Formatting(in.Resume.RawText) * weights.Formatting
	b.ContextualMatch = ContextualMatch(in.Resume.NormalizedText, in.JD.NormalizedText) * weights.ContextualMatch

	total := b.KeywordMatch + b.SemanticSimilarity + b.SectionCompleteness +
		b.ContactInfo + b.Formatting + b.ContextualMatch
	return Clamp(total, 0, 100), b
}

// SectionCompleteness 教育、经历、技能三个章节中存在的比例
func SectionCompleteness(sections types.Sections) float64 {
	found := 0
	for _, name := range requiredSections {
		if sections.Present(name) {
			found++
		}
	}
	return float64(found) / float64(len(requiredSections))
}

// ContactInfo 邮箱和电话各占一半
func ContactInfo(raw string) float64 {
	score := 0.0
	if emailPattern.MatchString(raw) {
		score += 0.5
	}
	if phonePattern.MatchString(raw) {
		score += 0.5
	}
	return score
}

// Formatting 长度超过500字符、行数超过10行各占一半
func Formatting(raw string) float64 {
	score := 0.0
	if len(raw) > minFormattedLength {
		score += 0.5
	}
	if len(strings.Split(raw, "\n")) > minFormattedLines {
		score += 0.5
	}
	return score
}

// ContextualMatch JD中前15个三词短语在简历中原样出现的比例
func ContextualMatch(resumeText, jdText string) float64 {
	phrases := threeWordPhrase.FindAllString(strings.ToLower(jdText), contextualPhraseLimit)
	if len(phrases) == 0 {
		return 0
	}
	resumeLower := strings.ToLower(resumeText)
	hits := 0
	for _, p := range phrases {
		if strings.Contains(resumeLower, p) {
			hits++
		}
	}
	return float64(hits) / float64(len(phrases))
}

// Label 按阈值给出 Excellent / Good / Fair / Poor
func Label(score float64, thresholds config.ATSThresholdsConfig) string {
	switch {
	case score >= thresholds.Excellent:
		return "Excellent"
	case score >= thresholds.Good:
		return "Good"
	case score >= thresholds.Fair:
		return "Fair"
	default:
		return "Poor"
	}
}
