package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/trace"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/reader"
	"resume-matcher/internal/tracing"
)

var errBadRequest = errors.New("bad request")

// DocumentReader 把上传的文件内容解析为文本
type DocumentReader interface {
	ReadBytes(ctx context.Context, name string, data []byte) (string, error)
}

// AnalyzeRequest POST /api/v1/analyze 的请求体
type AnalyzeRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// AnalysisHandler 负责简历与JD的匹配分析请求
type AnalysisHandler struct {
	cfg      *config.Config
	analyzer *analyzer.Analyzer
	reader   DocumentReader
	timeout  time.Duration
	maxBytes int64
}

// NewAnalysisHandler 创建一个新的 AnalysisHandler 实例
func NewAnalysisHandler(cfg *config.Config, a *analyzer.Analyzer, r DocumentReader) *AnalysisHandler {
	maxBytes := int64(cfg.Server.MaxRequestBodyMB) << 20
	if maxBytes <= 0 {
		maxBytes = 16 << 20
	}
	return &AnalysisHandler{
		cfg:      cfg,
		analyzer: a,
		reader:   r,
		timeout:  config.GetDuration(cfg.Server.AnalyzeTimeout, time.Minute),
		maxBytes: maxBytes,
	}
}

// HandleHealth 健康检查
func (h *AnalysisHandler) HandleHealth(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":  "healthy",
		"service": h.cfg.Server.ServiceName,
		"version": h.cfg.Server.ServiceVersion,
	})
}

// HandleAnalyze 分析 JSON 请求中的简历和JD文本
func (h *AnalysisHandler) HandleAnalyze(ctx context.Context, c *app.RequestContext) {
	var req AnalyzeRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		h.writeError(ctx, c, fmt.Errorf("%w: 请求体不是有效的JSON: %v", errBadRequest, err))
		return
	}
	h.analyze(ctx, c, req.ResumeText, req.JobDescription)
}

// HandleAnalyzeUpload 分析 multipart 上传的简历文件；JD 可以是文件，也可以是同名的文本字段
func (h *AnalysisHandler) HandleAnalyzeUpload(ctx context.Context, c *app.RequestContext) {
	resumeHeader, err := c.FormFile("resume")
	if err != nil {
		h.writeError(ctx, c, fmt.Errorf("%w: 缺少 resume 文件", errBadRequest))
		return
	}
	resumeText, err := h.readUpload(ctx, resumeHeader)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}

	var jdText string
	if jdHeader, ferr := c.FormFile("job_description"); ferr == nil {
		if jdText, err = h.readUpload(ctx, jdHeader); err != nil {
			h.writeError(ctx, c, err)
			return
		}
	} else {
		jdText = string(c.FormValue("job_description"))
	}

	h.analyze(ctx, c, resumeText, jdText)
}

func (h *AnalysisHandler) readUpload(ctx context.Context, header *multipart.FileHeader) (string, error) {
	if _, err := reader.DetectFormat(header.Filename); err != nil {
		return "", err
	}
	if header.Size > h.maxBytes {
		return "", fmt.Errorf("%w: 文件 %s 超过大小限制", errBadRequest, header.Filename)
	}
	file, err := header.Open()
	if err != nil {
		return "", reader.NewUnreadableError(header.Filename, "open", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes))
	if err != nil {
		return "", reader.NewUnreadableError(header.Filename, "read", err)
	}
	return h.reader.ReadBytes(ctx, header.Filename, data)
}

func (h *AnalysisHandler) analyze(ctx context.Context, c *app.RequestContext, resumeText, jdText string) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	report, err := h.analyzer.Analyze(ctx, resumeText, jdText)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}

	if id, err := uuid.NewV7(); err == nil {
		report.AnalysisID = id.String()
	} else {
		logger.Ctx(ctx).Warn().Err(err).Msg("生成 analysis_id 失败")
	}

	logger.Ctx(ctx).Info().
		Str("analysis_id", report.AnalysisID).
		Float64("overall", report.OverallMatchPercent).
		Str("ats_label", report.ATS.Label).
		Msg("分析完成")
	c.JSON(consts.StatusOK, report)
}

func (h *AnalysisHandler) writeError(ctx context.Context, c *app.RequestContext, err error) {
	status, kind := StatusFor(err)
	tracing.RecordHTTPFailure(trace.SpanFromContext(ctx), err, status, kind)

	event := logger.Ctx(ctx).Warn()
	if status >= consts.StatusInternalServerError {
		event = logger.Ctx(ctx).Error()
	}
	event.Err(err).Int("status", status).Msg("分析请求失败")

	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
}

// StatusFor 错误到 HTTP 状态码和错误类别的映射
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, analyzer.ErrEmptyDocument):
		return consts.StatusBadRequest, "empty_document"
	case errors.Is(err, errBadRequest):
		return consts.StatusBadRequest, "invalid_request"
	case errors.Is(err, reader.ErrUnsupportedFormat):
		return consts.StatusUnsupportedMediaType, "unsupported_format"
	case errors.Is(err, reader.ErrUnreadable):
		return consts.StatusUnprocessableEntity, "unreadable"
	case errors.Is(err, context.DeadlineExceeded):
		return consts.StatusGatewayTimeout, "timeout"
	default:
		return consts.StatusInternalServerError, "internal"
	}
}
