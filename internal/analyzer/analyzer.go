// Package analyzer 串联规范化、术语抽取、语义匹配、年限、章节、亮点和评分，生成 ScoreReport
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-matcher/internal/config"
	"resume-matcher/internal/experience"
	"resume-matcher/internal/highlights"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/matcher"
	"resume-matcher/internal/scoring"
	"resume-matcher/internal/sections"
	"resume-matcher/internal/similarity"
	"resume-matcher/internal/terms"
	"resume-matcher/internal/textproc"
	"resume-matcher/internal/tracing"
	"resume-matcher/internal/types"
)

var tracer = otel.Tracer("analyzer")

// Analyzer 无状态的分析流水线，可被多个请求并发使用
type Analyzer struct {
	oracle similarity.Oracle
	cfg    config.AnalysisConfig
	logger zerolog.Logger
}

// New 创建分析器，cfg 会先经过校验
func New(oracle similarity.Oracle, cfg config.AnalysisConfig) (*Analyzer, error) {
	if oracle == nil {
		return nil, ErrNilOracle
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("创建分析器失败: %w", err)
	}
	return &Analyzer{
		oracle: oracle,
		cfg:    cfg,
		logger: logger.Component("analyzer"),
	}, nil
}

// Config 返回分析器使用的参数
func (a *Analyzer) Config() config.AnalysisConfig {
	return a.cfg
}

// Analyze 比较简历和JD文本。任一文本为空时返回 ErrEmptyDocument，不会生成全零报告。
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jdText string) (*types.ScoreReport, error) {
	resume := textproc.NewDocument(resumeText)
	if resume.IsEmpty() {
		return nil, NewEmptyDocumentError("resume")
	}
	jd := textproc.NewDocument(jdText)
	if jd.IsEmpty() {
		return nil, NewEmptyDocumentError("jd")
	}
	return a.Score(ctx, resume, jd), nil
}

// Score 对已构造的文档计算报告。空文档不会报错，各项按退化规则取默认值。
func (a *Analyzer) Score(ctx context.Context, resume, jd types.Document) *types.ScoreReport {
	ctx, span := tracer.Start(ctx, "Analyzer.Score",
		trace.WithAttributes(tracing.DocumentAttributes("resume", resume.RawText)...),
		trace.WithAttributes(tracing.DocumentAttributes("jd", jd.RawText)...),
	)
	defer span.End()
	start := time.Now()

	// 术语抽取
	_, termSpan := tracer.Start(ctx, "ExtractTerms")
	resumeTerms := terms.ExtractAll(resume, a.cfg.TopKeywords).Terms()
	jdTerms := terms.ExtractAll(jd, a.cfg.TopKeywords).Terms()
	termSpan.SetAttributes(
		attribute.Int("resume.terms", len(resumeTerms)),
		attribute.Int("jd.terms", len(jdTerms)),
	)
	termSpan.End()

	// 语义匹配
	matchCtx, matchSpan := tracer.Start(ctx, "MatchTerms")
	match := matcher.Match(matchCtx, a.oracle, resumeTerms, jdTerms, a.cfg.SimilarityThreshold)
	var semantic float64
	if resume.NormalizedText != "" && jd.NormalizedText != "" {
		semantic = a.oracle.Similarity(matchCtx, resume.NormalizedText, jd.NormalizedText)
	}
	matchSpan.SetAttributes(
		attribute.Int("matched", len(match.Matched)),
		attribute.Int("missing", len(match.Missing)),
		attribute.Float64("semantic", semantic),
	)
	matchSpan.End()

	// 工作年限
	required := experience.ExtractYears(jd.RawText, a.cfg.CurrentYear)
	candidate := experience.ExtractYears(resume.RawText, a.cfg.CurrentYear)
	experienceScore := experience.MatchScore(required, candidate)

	// 章节与亮点
	sectionCtx, sectionSpan := tracer.Start(ctx, "ClassifySections")
	resumeSections := sections.Classify(resume.RawText)
	levels := sections.MatchLevels(sectionCtx, a.oracle, resumeSections, jd.NormalizedText)
	picked := highlights.Select(sectionCtx, a.oracle, textproc.CollapseSpace(resume.RawText), jd.NormalizedText, a.cfg.TopHighlights)
	sectionSpan.End()

	// 评分
	atsScore, breakdown := scoring.ATSScore(scoring.ATSInput{
		Resume:             resume,
		JD:                 jd,
		Sections:           resumeSections,
		MatchedCount:       len(match.Matched),
		JDTermCount:        len(jdTerms),
		SemanticSimilarity: semantic,
	}, a.cfg.ATSWeights)
	skill := scoring.SkillMatch(len(match.Matched), len(jdTerms), semantic)
	overall := scoring.Overall(skill, semantic, atsScore, experienceScore, a.cfg.Weights)

	report := &types.ScoreReport{
		SkillMatchScorePercent:      scoring.Round2(skill),
		ExperienceMatchScorePercent: scoring.Round2(experienceScore),
		Keywords: types.KeywordReport{
			Matched:      terms.RankMatched(match.Matched, resume.NormalizedText, jd.NormalizedText, a.cfg.DisplayKeywords),
			Missing:      terms.RankMissing(match.Missing, jd.NormalizedText, a.cfg.DisplayKeywords),
			MatchedTotal: len(match.Matched),
			MissingTotal: len(match.Missing),
		},
		Experience: types.ExperienceRecord{
			RequiredYears:  required,
			CandidateYears: candidate,
		},
		RelevantExperienceHighlights: picked,
		ATS: types.ATSReport{
			ScorePercent: scoring.Round2(atsScore),
			Label:        scoring.Label(atsScore, a.cfg.ATSThresholds),
			Breakdown:    roundBreakdown(breakdown),
		},
		TopResumeKeywords:    terms.ExtractKeywords(resume.NormalizedText, a.cfg.TopResumeKeywords),
		SectionMatchAnalysis: levels,
		SemanticSimilarity:   scoring.Round(semantic, 4),
		OverallMatchPercent:  scoring.Round2(overall),
		Match:                match,
	}

	span.SetAttributes(attribute.Float64("overall", report.OverallMatchPercent))
	a.logger.Debug().
		Int("jd_terms", len(jdTerms)).
		Int("matched", len(match.Matched)).
		Float64("overall", report.OverallMatchPercent).
		Dur("elapsed", time.Since(start)).
		Msg("分析完成")
	return report
}

func roundBreakdown(b types.ATSBreakdown) types.ATSBreakdown {
	return types.ATSBreakdown{
		KeywordMatch:        scoring.Round2(b.KeywordMatch),
		SemanticSimilarity:  scoring.Round2(b.SemanticSimilarity),
		SectionCompleteness: scoring.Round2(b.SectionCompleteness),
		ContactInfo:         scoring.Round2(b.ContactInfo),
		Formatting:          scoring.Round2(b.Formatting),
		ContextualMatch:     scoring.Round2(b.ContextualMatch),
	}
}
