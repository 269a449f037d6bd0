// Package export 把一组评分报告导出为 Excel 工作簿
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"resume-matcher/internal/types"
)

const (
	SheetRanking  = "Ranking"
	SheetKeywords = "Keywords"
	SheetSections = "Sections"
)

// Entry 一份简历及其评分报告
type Entry struct {
	Name   string
	Report *types.ScoreReport
}

var rankingHeaders = []string{
	"Rank", "Candidate", "Overall %", "Skills %", "Semantic", "ATS %", "ATS Label",
	"Experience %", "Required Years", "Candidate Years",
}

// Rank 按综合匹配度降序排列，同分保持输入顺序
func Rank(entries []Entry) []Entry {
	ranked := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Report != nil {
			ranked = append(ranked, e)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Report.OverallMatchPercent > ranked[j].Report.OverallMatchPercent
	})
	return ranked
}

// Write 生成工作簿写入 w：排名、关键词、章节三个工作表
func Write(w io.Writer, jobName string, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	ranked := Rank(entries)
	if err := f.SetSheetName("Sheet1", SheetRanking); err != nil {
		return err
	}
	if err := writeRanking(f, jobName, ranked); err != nil {
		return fmt.Errorf("写入 %s 工作表失败: %w", SheetRanking, err)
	}
	if _, err := f.NewSheet(SheetKeywords); err != nil {
		return err
	}
	if err := writeKeywords(f, ranked); err != nil {
		return fmt.Errorf("写入 %s 工作表失败: %w", SheetKeywords, err)
	}
	if _, err := f.NewSheet(SheetSections); err != nil {
		return err
	}
	if err := writeSections(f, ranked); err != nil {
		return fmt.Errorf("写入 %s 工作表失败: %w", SheetSections, err)
	}
	return f.Write(w)
}

// Save 写入 path，缺少 .xlsx 扩展名时自动补上
func Save(path, jobName string, entries []Entry) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}
	if err := Write(f, jobName, entries); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func writeRanking(f *excelize.File, jobName string, ranked []Entry) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(SheetRanking, "A1", "Job: "+jobName); err != nil {
		return err
	}
	if err := setRow(f, SheetRanking, 2, toAny(rankingHeaders)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(rankingHeaders), 2)
	if err := f.SetCellStyle(SheetRanking, "A2", last, headerStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetRanking, "B", "B", 30)

	for i, e := range ranked {
		r := e.Report
		row := []any{
			i + 1, e.Name, r.OverallMatchPercent, r.SkillMatchScorePercent, r.SemanticSimilarity,
			r.ATS.ScorePercent, r.ATS.Label, r.ExperienceMatchScorePercent,
			r.Experience.RequiredYears, r.Experience.CandidateYears,
		}
		if err := setRow(f, SheetRanking, i+3, row); err != nil {
			return err
		}
	}
	return nil
}

func writeKeywords(f *excelize.File, ranked []Entry) error {
	if err := setRow(f, SheetKeywords, 1, []any{"Candidate", "Matched", "Missing", "Matched Total", "Missing Total"}); err != nil {
		return err
	}
	for i, e := range ranked {
		k := e.Report.Keywords
		row := []any{e.Name, strings.Join(k.Matched, ", "), strings.Join(k.Missing, ", "), k.MatchedTotal, k.MissingTotal}
		if err := setRow(f, SheetKeywords, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSections(f *excelize.File, ranked []Entry) error {
	header := []any{"Candidate"}
	for _, name := range types.SectionOrder {
		header = append(header, string(name))
	}
	header = append(header, types.SoftSkillsKey)
	if err := setRow(f, SheetSections, 1, header); err != nil {
		return err
	}

	for i, e := range ranked {
		row := []any{e.Name}
		for _, key := range header[1:] {
			row = append(row, string(e.Report.SectionMatchAnalysis[key.(string)]))
		}
		if err := setRow(f, SheetSections, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
