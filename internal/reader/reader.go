// Package reader 把 txt、md、html、pdf、docx 文档读取为纯文本
package reader

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog"

	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
)

// Format 文档格式
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

var extensions = map[string]Format{
	".txt":  FormatText,
	".text": FormatText,
	".md":   FormatText,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".html": FormatHTML,
	".htm":  FormatHTML,
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	docxLineBreak    = regexp.MustCompile(`<w:(?:br|cr)\s*/>`)
	docxTab          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// Reader 文档读取接口
type Reader interface {
	Read(ctx context.Context, path string) (string, error)
}

// DetectFormat 按扩展名判断文档格式
func DetectFormat(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", NewUnsupportedError(name, ext)
}

// FileReader 读取本地文件或内存中的文档
type FileReader struct {
	pdf          *pdf.PDFParser
	tika         *TikaClient // 非空时 PDF 交给 Tika 解析
	parseTimeout time.Duration
	logger       zerolog.Logger
}

// FileReaderOption FileReader 的配置选项
type FileReaderOption func(*FileReader)

// WithParseTimeout 设置单个 PDF 的解析超时
func WithParseTimeout(d time.Duration) FileReaderOption {
	return func(r *FileReader) {
		if d > 0 {
			r.parseTimeout = d
		}
	}
}

// WithTika 使用 Tika Server 解析 PDF
func WithTika(t *TikaClient) FileReaderOption {
	return func(r *FileReader) {
		r.tika = t
	}
}

// NewFileReader 创建文档读取器。PDF 不按页切分，整篇文本作为一个字符串返回。
func NewFileReader(ctx context.Context, options ...FileReaderOption) (*FileReader, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("创建 PDF 解析器失败: %w", err)
	}
	r := &FileReader{
		pdf:          p,
		parseTimeout: 30 * time.Second,
		logger:       logger.Component("reader"),
	}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

// Read 读取本地文件
func (r *FileReader) Read(ctx context.Context, path string) (string, error) {
	if _, err := DetectFormat(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", NewUnreadableError(path, "open", err)
	}
	return r.ReadBytes(ctx, path, data)
}

// ReadBytes 按 name 的扩展名解析内存中的文档
func (r *FileReader) ReadBytes(ctx context.Context, name string, data []byte) (string, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return "", err
	}

	start := time.Now()
	var text string
	switch format {
	case FormatPDF:
		text, err = r.readPDF(ctx, name, data)
	case FormatDOCX:
		text, err = readDOCX(name, data)
	case FormatHTML:
		text, err = readHTML(name, data)
	default:
		text = strings.ToValidUTF8(string(data), "")
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("path", name).Msg("文档读取失败")
		return "", err
	}

	r.logger.Debug().
		Str("path", name).
		Str("format", string(format)).
		Int("bytes", len(data)).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("文档读取完成")
	return text, nil
}

func (r *FileReader) readPDF(ctx context.Context, name string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.parseTimeout)
	defer cancel()

	if r.tika != nil {
		return r.tika.ExtractText(ctx, name, data)
	}

	docs, err := r.pdf.Parse(ctx, bytes.NewReader(data), einoParser.WithURI(name))
	if err != nil {
		return "", NewUnreadableError(name, "parse_pdf", err)
	}
	if len(docs) == 0 {
		return "", NewUnreadableError(name, "parse_pdf", fmt.Errorf("解析结果为空"))
	}

	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(doc.Content)
	}
	return sb.String(), nil
}

// readHTML 招聘页面常见的 HTML 职位描述，转换为 Markdown 文本
func readHTML(name string, data []byte) (string, error) {
	md, err := htmltomarkdown.ConvertString(strings.ToValidUTF8(string(data), ""))
	if err != nil {
		return "", NewUnreadableError(name, "parse_html", err)
	}
	return md, nil
}

func readDOCX(name string, data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", NewUnreadableError(name, "parse_docx", err)
	}
	defer doc.Close()
	return docxText(doc.Editable().GetContent()), nil
}

// docxText 把 word/document.xml 的内容转为纯文本，每个段落一行
func docxText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxLineBreak.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimRight(line, " \t\r"); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// NewFileReaderFromConfig 按配置选择 PDF 解析后端
func NewFileReaderFromConfig(ctx context.Context, cfg config.ReaderConfig) (*FileReader, error) {
	options := []FileReaderOption{WithParseTimeout(config.GetDuration(cfg.ParseTimeout, 30*time.Second))}
	switch cfg.PDFBackend {
	case "", "eino":
	case "tika":
		if cfg.TikaURL == "" {
			return nil, fmt.Errorf("pdf_backend 为 tika 时必须配置 tika_url")
		}
		timeout := time.Duration(cfg.TikaTimeoutSeconds) * time.Second
		options = append(options, WithTika(NewTikaClient(cfg.TikaURL, timeout)))
	default:
		return nil, fmt.Errorf("未知的 pdf_backend: %q", cfg.PDFBackend)
	}
	return NewFileReader(ctx, options...)
}
