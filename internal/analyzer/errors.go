package analyzer

import (
	"errors"
	"fmt"
)

// 基础错误类型
var (
	// ErrEmptyDocument 简历或JD没有可用文本
	ErrEmptyDocument = errors.New("cannot extract text")
	// ErrNilOracle 未提供相似度实现
	ErrNilOracle = errors.New("similarity oracle is required")
)

// AnalysisError 分析失败时的详细错误，Op 为出错的输入（resume 或 jd）
type AnalysisError struct {
	Op      string
	BaseErr error
	Detail  string
}

func (e *AnalysisError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (输入:%s): %s", e.BaseErr, e.Op, e.Detail)
	}
	return fmt.Sprintf("%s (输入:%s)", e.BaseErr, e.Op)
}

func (e *AnalysisError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *AnalysisError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// NewEmptyDocumentError 构造空文档错误
func NewEmptyDocumentError(op string) error {
	return &AnalysisError{
		Op:      op,
		BaseErr: ErrEmptyDocument,
		Detail:  "文本为空或只有空白",
	}
}
