package types

import "strings"

// SectionName 简历章节名称
type SectionName string

const (
	SectionEducation      SectionName = "education"
	SectionExperience     SectionName = "experience"
	SectionSkills         SectionName = "skills"
	SectionProjects       SectionName = "projects"
	SectionCertifications SectionName = "certifications"
	SectionSummary        SectionName = "summary"
)

// SectionOrder 章节的固定顺序，同时也是标题识别时的优先级
var SectionOrder = []SectionName{
	SectionEducation,
	SectionExperience,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
	SectionSummary,
}

// SoftSkillsKey 章节匹配分析中软技能一项的键
const SoftSkillsKey = "soft_skills"

// Sections 章节名到章节文本的映射，六个章节始终存在（可能为空串）
type Sections map[SectionName]string

// NewSections 创建包含全部章节的空映射
func NewSections() Sections {
	s := make(Sections, len(SectionOrder))
	for _, name := range SectionOrder {
		s[name] = ""
	}
	return s
}

// Present 章节是否有非空白内容
func (s Sections) Present(name SectionName) bool {
	return strings.TrimSpace(s[name]) != ""
}

// Combined 按固定顺序拼接全部章节文本
func (s Sections) Combined() string {
	parts := make([]string, 0, len(SectionOrder))
	for _, name := range SectionOrder {
		parts = append(parts, s[name])
	}
	return strings.Join(parts, " ")
}

// MatchLevel 章节匹配等级
type MatchLevel string

const (
	MatchStrong      MatchLevel = "Strongly Matched"
	MatchPartial     MatchLevel = "Partially Matched"
	MatchNone        MatchLevel = "Not Matched"
	MatchNotRequired MatchLevel = "Not Required"
)

// MatchResult JD术语按语义匹配划分的结果，Matched 与 Missing 不相交且并集等于JD术语
type MatchResult struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// ExperienceRecord 工作年限
type ExperienceRecord struct {
	RequiredYears  int `json:"required_years"`
	CandidateYears int `json:"candidate_years"`
}
