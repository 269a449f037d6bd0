package storage

import (
	"time"

	"resume-matcher/internal/types"
)

// 分析结果状态
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// AnalysisRequest 异步分析请求。文本和路径二选一，路径可以是本地文件或 minio://bucket/key
type AnalysisRequest struct {
	RequestID      string    `json:"request_id"`
	ResumeText     string    `json:"resume_text,omitempty"`
	JobDescription string    `json:"job_description,omitempty"`
	ResumePath     string    `json:"resume_path,omitempty"`
	JDPath         string    `json:"jd_path,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at,omitempty"`
}

// AnalysisResult 异步分析结果
type AnalysisResult struct {
	RequestID   string             `json:"request_id"`
	Status      string             `json:"status"`
	Report      *types.ScoreReport `json:"report,omitempty"`
	Error       string             `json:"error,omitempty"`
	ErrorKind   string             `json:"error_kind,omitempty"` // empty_document, unsupported_format, unreadable, invalid_request, internal
	CompletedAt time.Time          `json:"completed_at"`
}
