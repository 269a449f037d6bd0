// Package sections 识别简历章节并评估各章节与JD的匹配程度
package sections

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resume-matcher/internal/types"
)

// maxHeaderLength 长度不小于该值的行不会被识别为章节标题
const maxHeaderLength = 50

type headerPattern struct {
	name types.SectionName
	re   *regexp.Regexp
}

// 按 types.SectionOrder 的顺序匹配，先匹配到的章节优先
var headerPatterns = []headerPattern{
	{types.SectionEducation, regexp.MustCompile(`education|academic|qualification|degree|university|college`)},
	{types.SectionExperience, regexp.MustCompile(`experience|employment|work|career|history|professional`)},
	{types.SectionSkills, regexp.MustCompile(`skills|competencies|expertise|proficiencies|technical|capabilities`)},
	{types.SectionProjects, regexp.MustCompile(`projects|portfolio|work samples|achievements`)},
	{types.SectionCertifications, regexp.MustCompile(`certifications?|certificates?|licenses?|credentials`)},
	{types.SectionSummary, regexp.MustCompile(`summary|profile|objective|about|overview`)},
}

// HeaderSection 判断一行是否为章节标题，返回对应章节
func HeaderSection(line string) (types.SectionName, bool) {
	lower := strings.ToLower(strings.TrimSpace(line))
	if lower == "" || utf8.RuneCountInString(lower) >= maxHeaderLength {
		return "", false
	}
	for _, p := range headerPatterns {
		if p.re.MatchString(lower) {
			return p.name, true
		}
	}
	return "", false
}

// Classify 逐行扫描原始文本，遇到章节标题时切换当前章节，
// 之后的非空行（包括标题行本身）追加到当前章节。第一个标题之前的内容不属于任何章节。
func Classify(raw string) types.Sections {
	sections := types.NewSections()
	builders := make(map[types.SectionName]*strings.Builder, len(types.SectionOrder))
	for _, name := range types.SectionOrder {
		builders[name] = &strings.Builder{}
	}

	var current types.SectionName
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if name, ok := HeaderSection(line); ok {
			current = name
		}
		if current != "" && strings.TrimSpace(line) != "" {
			builders[current].WriteString(line)
			builders[current].WriteByte('\n')
		}
	}

	for name, b := range builders {
		sections[name] = b.String()
	}
	return sections
}
