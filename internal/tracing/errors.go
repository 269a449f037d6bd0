package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecordFailure 在 span 上记录一次失败。kind 是调用方的错误类别，
// 例如 empty_document、unreadable、internal，便于在追踪后端按类别过滤。
func RecordFailure(span trace.Span, err error, kind string, attributes ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	msg := Snippet(RedactContacts(err.Error()), MaxErrorRunes)
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.kind", kind),
		attribute.String("error.message", msg),
	)
	span.SetAttributes(attributes...)
	span.SetStatus(codes.Error, msg)
}

// RecordHTTPFailure 附带状态码；4xx 记为 client_error，5xx 记为 server_error
func RecordHTTPFailure(span trace.Span, err error, statusCode int, kind string) {
	category := "server_error"
	if statusCode >= 400 && statusCode < 500 {
		category = "client_error"
	}
	RecordFailure(span, err, kind,
		attribute.Int("http.status_code", statusCode),
		attribute.String("error.category", category),
	)
}
