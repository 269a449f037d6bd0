package scoring

import (
	"math"

	"resume-matcher/internal/config"
)

// SkillMatch 技能匹配度：关键词匹配率与整体语义相似度各占一半，JD没有术语时为 0
func SkillMatch(matchedCount, jdTermCount int, semantic float64) float64 {
	if jdTermCount <= 0 {
		return 0
	}
	ratio := float64(matchedCount) / float64(jdTermCount)
	return Clamp((ratio*0.5+semantic*0.5)*100, 0, 100)
}

// Overall 综合匹配度，四项分数按权重线性组合，semantic 为 0-1 的相似度
func Overall(skill, semantic, ats, experience float64, w config.WeightsConfig) float64 {
	total := skill*w.Skills +
		semantic*100*w.Semantic +
		ats*w.ATS +
		experience*w.Experience
	return Clamp(total, 0, 100)
}

// Clamp 把 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Round 四舍五入到 places 位小数
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Round2 四舍五入到两位小数
func Round2(v float64) float64 {
	return Round(v, 2)
}
