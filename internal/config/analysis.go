package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidAnalysisConfig 评分配置不合法
var ErrInvalidAnalysisConfig = errors.New("invalid analysis config")

const weightTolerance = 1e-6

// DefaultCurrentYear 未配置 current_year 时 present/current 时间段的截止年份
const DefaultCurrentYear = 2025

// WeightsConfig 综合匹配度的四项权重，总和必须为 1
type WeightsConfig struct {
	Skills     float64 `yaml:"skills" json:"skills"`
	Semantic   float64 `yaml:"semantic" json:"semantic"`
	ATS        float64 `yaml:"ats" json:"ats"`
	Experience float64 `yaml:"experience" json:"experience"`
}

// Sum 权重之和
func (w WeightsConfig) Sum() float64 {
	return w.Skills + w.Semantic + w.ATS + w.Experience
}

// ATSThresholdsConfig ATS 分数的标签分界点（百分制）
type ATSThresholdsConfig struct {
	Excellent float64 `yaml:"excellent" json:"excellent"`
	Good      float64 `yaml:"good" json:"good"`
	Fair      float64 `yaml:"fair" json:"fair"`
}

// ATSWeightsConfig ATS 各分项的满分值，总和必须为 100
type ATSWeightsConfig struct {
	KeywordMatch        float64 `yaml:"keyword_match" json:"keyword_match"`
	SemanticSimilarity  float64 `yaml:"semantic_similarity" json:"semantic_similarity"`
	SectionCompleteness float64 `yaml:"section_completeness" json:"section_completeness"`
	ContactInfo         float64 `yaml:"contact_info" json:"contact_info"`
	Formatting          float64 `yaml:"formatting" json:"formatting"`
	ContextualMatch     float64 `yaml:"contextual_match" json:"contextual_match"`
}

// Sum 分项满分之和
func (w ATSWeightsConfig) Sum() float64 {
	return w.KeywordMatch + w.SemanticSimilarity + w.SectionCompleteness +
		w.ContactInfo + w.Formatting + w.ContextualMatch
}

// AnalysisConfig 评分流水线的全部可调参数，作为一个整体传入分析器
type AnalysisConfig struct {
	TopKeywords         int                 `yaml:"top_keywords"`         // 频率关键词上限
	SimilarityThreshold float64             `yaml:"similarity_threshold"` // 术语语义匹配阈值
	TopHighlights       int                 `yaml:"top_highlights"`
	DisplayKeywords     int                 `yaml:"display_keywords"`    // 报告中 matched/missing 的展示上限
	TopResumeKeywords   int                 `yaml:"top_resume_keywords"` // 报告中简历高频词数量
	CurrentYear         int                 `yaml:"current_year"`        // 显式配置为 0 时取加载时的年份
	Weights             WeightsConfig       `yaml:"weights"`
	ATSThresholds       ATSThresholdsConfig `yaml:"ats_thresholds"`
	ATSWeights          ATSWeightsConfig    `yaml:"ats_weights"`
}

// DefaultAnalysisConfig 默认评分参数
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		TopKeywords:         100,
		SimilarityThreshold: 0.65,
		TopHighlights:       5,
		DisplayKeywords:     7,
		TopResumeKeywords:   20,
		CurrentYear:         DefaultCurrentYear,
		Weights: WeightsConfig{
			Skills:     0.45,
			Semantic:   0.25,
			ATS:        0.20,
			Experience: 0.10,
		},
		ATSThresholds: ATSThresholdsConfig{
			Excellent: 70,
			Good:      55,
			Fair:      35,
		},
		ATSWeights: ATSWeightsConfig{
			KeywordMatch:        25,
			SemanticSimilarity:  35,
			SectionCompleteness: 15,
			ContactInfo:         10,
			Formatting:          10,
			ContextualMatch:     5,
		},
	}
}

func (a *AnalysisConfig) applyDefaults() {
	if a.CurrentYear == 0 {
		a.CurrentYear = time.Now().Year()
	}
}

// Validate 校验评分参数
func (a AnalysisConfig) Validate() error {
	if a.TopKeywords <= 0 || a.TopHighlights <= 0 || a.DisplayKeywords <= 0 || a.TopResumeKeywords <= 0 {
		return fmt.Errorf("%w: keyword and highlight limits must be positive", ErrInvalidAnalysisConfig)
	}
	if a.SimilarityThreshold <= 0 || a.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity_threshold %.3f outside (0,1]", ErrInvalidAnalysisConfig, a.SimilarityThreshold)
	}
	if a.CurrentYear < 1980 {
		return fmt.Errorf("%w: current_year %d before 1980", ErrInvalidAnalysisConfig, a.CurrentYear)
	}
	if sum := a.Weights.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %.6f, want 1", ErrInvalidAnalysisConfig, sum)
	}
	if sum := a.ATSWeights.Sum(); math.Abs(sum-100) > weightTolerance {
		return fmt.Errorf("%w: ats_weights sum to %.3f, want 100", ErrInvalidAnalysisConfig, sum)
	}
	t := a.ATSThresholds
	if !(t.Excellent > t.Good && t.Good > t.Fair && t.Fair > 0 && t.Excellent <= 100) {
		return fmt.Errorf("%w: ats_thresholds must satisfy 100 >= excellent > good > fair > 0", ErrInvalidAnalysisConfig)
	}
	return nil
}
