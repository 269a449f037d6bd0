package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/config"
	"resume-matcher/internal/embedder"
	"resume-matcher/internal/export"
	appLogger "resume-matcher/internal/logger"
	"resume-matcher/internal/reader"
	"resume-matcher/internal/similarity"
	"resume-matcher/internal/types"
)

var errNoInput = errors.New("no input documents")

type options struct {
	configPath string
	resumes    []string
	jdPath     string
	xlsxPath   string
	assetsDir  string
	offline    bool
	compact    bool
}

func main() {
	var opts options
	pflag.StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	pflag.StringSliceVarP(&opts.resumes, "resume", "r", nil, "Resume file(s) (.pdf, .docx, .txt, .md, .html); repeat to rank several")
	pflag.StringVarP(&opts.jdPath, "jd", "j", "", "Job description file")
	pflag.StringVar(&opts.xlsxPath, "xlsx", "", "Also write a ranking workbook to this path")
	pflag.StringVar(&opts.assetsDir, "assets", "", "Directory containing resume.{pdf,txt,docx} and job.txt")
	pflag.BoolVar(&opts.offline, "offline", false, "Use the offline lexical embedder")
	pflag.BoolVar(&opts.compact, "compact", false, "Print compact JSON")
	pflag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "matchcli: %v\n", err)
		if errors.Is(err, errNoInput) {
			pflag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// scored 批量模式下的单条输出
type scored struct {
	Resume string             `json:"resume"`
	Report *types.ScoreReport `json:"report"`
}

func run(ctx context.Context, opts options) error {
	resumes, jdPath, err := resolveInputs(opts)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	// 报告输出到 stdout，日志只写 stderr
	appLogger.InitWithWriter(appLogger.Config{Level: cfg.Logger.Level, Format: "pretty", TimeFormat: cfg.Logger.TimeFormat}, os.Stderr)
	if opts.offline {
		cfg.Embedding.Provider = "lexical"
	}

	emb, model, err := embedder.Build(cfg.Embedding, nil)
	if err != nil {
		return err
	}
	appLogger.Debug().Str("model", model).Msg("向量模型已就绪")

	a, err := analyzer.New(similarity.NewEmbeddingOracle(emb), cfg.Analysis)
	if err != nil {
		return err
	}
	r, err := reader.NewFileReaderFromConfig(ctx, cfg.Reader)
	if err != nil {
		return err
	}

	jdText, err := r.Read(ctx, jdPath)
	if err != nil {
		return err
	}

	results := make([]scored, 0, len(resumes))
	for _, path := range resumes {
		resumeText, err := r.Read(ctx, path)
		if err != nil {
			return err
		}
		report, err := a.Analyze(ctx, resumeText, jdText)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		results = append(results, scored{Resume: path, Report: report})
	}

	if opts.xlsxPath != "" {
		entries := make([]export.Entry, len(results))
		for i, res := range results {
			entries[i] = export.Entry{Name: filepath.Base(res.Resume), Report: res.Report}
		}
		saved, err := export.Save(opts.xlsxPath, filepath.Base(jdPath), entries)
		if err != nil {
			return err
		}
		appLogger.Info().Str("path", saved).Msg("排名工作簿已写入")
	}

	enc := json.NewEncoder(os.Stdout)
	if !opts.compact {
		enc.SetIndent("", "  ")
	}
	if len(results) == 1 {
		return enc.Encode(results[0].Report)
	}
	return enc.Encode(results)
}

// resolveInputs 显式路径优先，否则在 assets 目录中查找
func resolveInputs(opts options) ([]string, string, error) {
	resumes, jdPath := opts.resumes, opts.jdPath
	if opts.assetsDir != "" {
		if len(resumes) == 0 {
			if p := findResume(opts.assetsDir); p != "" {
				resumes = []string{p}
			}
		}
		if jdPath == "" {
			if p := filepath.Join(opts.assetsDir, "job.txt"); fileExists(p) {
				jdPath = p
			}
		}
	}
	if len(resumes) == 0 || jdPath == "" {
		return nil, "", fmt.Errorf("%w: both --resume and --jd (or --assets) are required", errNoInput)
	}
	return resumes, jdPath, nil
}

// findResume 按 pdf、txt、docx 的顺序查找 resume.*
func findResume(dir string) string {
	for _, ext := range []string{".pdf", ".txt", ".docx"} {
		if p := filepath.Join(dir, "resume"+ext); fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
