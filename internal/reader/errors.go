package reader

import (
	"errors"
	"fmt"
)

// 基础错误类型
var (
	// ErrUnsupportedFormat 扩展名不在支持的格式之内
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrUnreadable 文件不存在、无法打开或内容无法解析
	ErrUnreadable = errors.New("document is unreadable")
)

// ReadError 读取文档失败的详细错误
type ReadError struct {
	Path    string
	Op      string
	BaseErr error
	Detail  string
}

func (e *ReadError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 路径:%s): %s", e.BaseErr, e.Op, e.Path, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 路径:%s)", e.BaseErr, e.Op, e.Path)
}

func (e *ReadError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ReadError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// NewUnsupportedError 构造格式不支持错误
func NewUnsupportedError(path, ext string) error {
	return &ReadError{
		Path:    path,
		Op:      "detect",
		BaseErr: ErrUnsupportedFormat,
		Detail:  fmt.Sprintf("扩展名 %q", ext),
	}
}

// NewUnreadableError 构造不可读错误
func NewUnreadableError(path, op string, cause error) error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return &ReadError{
		Path:    path,
		Op:      op,
		BaseErr: ErrUnreadable,
		Detail:  detail,
	}
}
