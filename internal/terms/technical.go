package terms

import (
	"regexp"
	"strings"

	"resume-matcher/internal/textproc"
)

var (
	capitalizedPhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+\b`)
	acronym           = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	hyphenated        = regexp.MustCompile(`\b\w+(?:-\w+)+\b`)

	skillPhrases = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b\w+(?:\s+\w+){0,2}\s+(?:skills?|experience|knowledge|proficiency)\b`),
		regexp.MustCompile(`(?i)\b(?:expert|proficient|experienced)\s+(?:in|with)\s+\w+(?:\s+\w+){0,2}\b`),
	}

	// 指示词后面跟着的列表，例如 "Skills: Go, Python" 或 "experience with Kafka and Redis"
	skillIndicators = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:skills?|technologies|tools|software|languages|frameworks|platforms|systems)[:\s]+([^.!?\n]+)`),
		regexp.MustCompile(`(?i)(?:experience|proficiency|expertise|knowledge)\s+(?:in|with)[:\s]+([^.!?\n]+)`),
		regexp.MustCompile(`(?i)(?:using|worked with|utilized|implemented)[:\s]+([^.!?\n]+)`),
	}
	listSeparator = regexp.MustCompile(`[,;/&]|\sand\s|\sor\s`)

	bulletLine = regexp.MustCompile(`(?m)^[ \t]*[•\-*▪●◦][ \t]*(.+)$`)
	bulletWord = regexp.MustCompile(`\b[A-Za-z][\w\-.]+\b`)
)

const bulletMarks = " \t\r•-*▪●◦"

// ExtractTechnicalTerms 从原始文本中抽取技术术语：
// 首字母大写的多词短语、全大写缩写、连字符复合词、"xxx skills" 一类短语、
// 技能指示词后的列表项，以及项目符号行中长度大于3的词。结果全部小写，按发现顺序去重。
func ExtractTechnicalTerms(raw string) []string {
	text := textproc.FoldAccents(raw)
	seen := make(map[string]struct{})
	out := make([]string, 0)
	add := func(term string) {
		term = strings.ToLower(strings.Join(strings.Fields(term), " "))
		if len(term) <= 2 {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	for _, m := range capitalizedPhrase.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range acronym.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range hyphenated.FindAllString(text, -1) {
		add(m)
	}
	for _, re := range skillPhrases {
		for _, m := range re.FindAllString(text, -1) {
			add(m)
		}
	}
	for _, re := range skillIndicators {
		for _, groups := range re.FindAllStringSubmatch(text, -1) {
			for _, item := range listSeparator.Split(groups[1], -1) {
				add(strings.Trim(item, bulletMarks))
			}
		}
	}
	for _, groups := range bulletLine.FindAllStringSubmatch(text, -1) {
		for _, w := range bulletWord.FindAllString(groups[1], -1) {
			if len(w) > 3 {
				add(w)
			}
		}
	}
	return out
}
