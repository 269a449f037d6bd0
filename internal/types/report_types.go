package types

// KeywordReport 报告中的关键词部分，列表按优先级截断，Total 为截断前的数量
type KeywordReport struct {
	Matched      []string `json:"matched"`
	Missing      []string `json:"missing"`
	MatchedTotal int      `json:"matched_total"`
	MissingTotal int      `json:"missing_total"`
}

// ATSBreakdown ATS 分数的各分项得分
type ATSBreakdown struct {
	KeywordMatch        float64 `json:"keyword_match"`
	SemanticSimilarity  float64 `json:"semantic_similarity"`
	SectionCompleteness float64 `json:"section_completeness"`
	ContactInfo         float64 `json:"contact_info"`
	Formatting          float64 `json:"formatting"`
	ContextualMatch     float64 `json:"contextual_match"`
}

// ATSReport ATS 兼容性评分
type ATSReport struct {
	ScorePercent float64      `json:"score_percent"`
	Label        string       `json:"label"`
	Breakdown    ATSBreakdown `json:"breakdown"`
}

// ScoreReport 一次简历与JD比较的完整结果，所有百分比位于 [0,100] 并保留两位小数
type ScoreReport struct {
	AnalysisID                   string                `json:"analysis_id,omitempty"`
	SkillMatchScorePercent       float64               `json:"skill_match_score_percent"`
	ExperienceMatchScorePercent  float64               `json:"experience_match_score_percent"`
	Keywords                     KeywordReport         `json:"keywords"`
	Experience                   ExperienceRecord      `json:"experience"`
	RelevantExperienceHighlights []string              `json:"relevant_experience_highlights"`
	ATS                          ATSReport             `json:"ats"`
	TopResumeKeywords            []string              `json:"top_resume_keywords"`
	SectionMatchAnalysis         map[string]MatchLevel `json:"section_match_analysis"`
	SemanticSimilarity           float64               `json:"semantic_similarity"`
	OverallMatchPercent          float64               `json:"overall_match_percent"`

	// Match 未截断的完整匹配划分，不参与序列化
	Match MatchResult `json:"-"`
}
