package sections

import (
	"context"
	"strings"

	"resume-matcher/internal/similarity"
	"resume-matcher/internal/types"
)

const (
	// minSectionLength 章节文本短于该长度视为缺失
	minSectionLength = 10
	strongThreshold  = 0.5
	partialThreshold = 0.25
	softSkillRatio   = 0.5
)

// SoftSkills 通用软技能词表
var SoftSkills = []string{
	"leadership", "teamwork", "communication", "problem-solving",
	"collaboration", "management", "organized", "creative",
	"analytical", "detail-oriented", "motivated", "reliable",
	"adaptable", "innovative", "strategic", "efficient",
}

// LevelFor 由相似度得到匹配等级：> 0.5 强匹配，> 0.25 部分匹配，否则不匹配
func LevelFor(score float64) types.MatchLevel {
	switch {
	case score > strongThreshold:
		return types.MatchStrong
	case score > partialThreshold:
		return types.MatchPartial
	default:
		return types.MatchNone
	}
}

// MatchLevels 评估每个章节与JD的匹配等级，并附加软技能一项。
// 所有有效章节在一次 oracle 调用中完成比较。
func MatchLevels(ctx context.Context, oracle similarity.Oracle, sections types.Sections, jdText string) map[string]types.MatchLevel {
	levels := make(map[string]types.MatchLevel, len(types.SectionOrder)+1)

	var names []types.SectionName
	var texts []string
	for _, name := range types.SectionOrder {
		text := sections[name]
		if len(text) < minSectionLength {
			levels[string(name)] = types.MatchNone
			continue
		}
		names = append(names, name)
		texts = append(texts, text)
	}

	if len(texts) > 0 {
		scores := oracle.Similarities(ctx, jdText, texts)
		for i, name := range names {
			var score float64
			if i < len(scores) {
				score = scores[i]
			}
			levels[string(name)] = LevelFor(score)
		}
	}

	levels[types.SoftSkillsKey] = SoftSkillLevel(sections, jdText)
	return levels
}

// SoftSkillLevel JD中出现的软技能有一半以上也出现在简历章节中时为强匹配；
// JD未提及任何软技能时为 Not Required
func SoftSkillLevel(sections types.Sections, jdText string) types.MatchLevel {
	jdLower := strings.ToLower(jdText)
	resumeLower := strings.ToLower(sections.Combined())

	required, found := 0, 0
	for _, skill := range SoftSkills {
		if !strings.Contains(jdLower, skill) {
			continue
		}
		required++
		if strings.Contains(resumeLower, skill) {
			found++
		}
	}

	if required == 0 {
		return types.MatchNotRequired
	}
	if float64(found)/float64(required) >= softSkillRatio {
		return types.MatchStrong
	}
	return types.MatchNone
}
