// Package worker 从 RabbitMQ 消费异步分析请求并回复结果
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/reader"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/tracing"
)

var tracer = otel.Tracer("worker")

// 错误分类，写入 AnalysisResult.ErrorKind
const (
	KindEmptyDocument     = "empty_document"
	KindUnsupportedFormat = "unsupported_format"
	KindUnreadable        = "unreadable"
	KindInvalidRequest    = "invalid_request"
	KindInternal          = "internal"
)

var errInvalidRequest = errors.New("invalid analysis request")

// Publisher 发布分析结果
type Publisher interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, opts storage.PublishOptions) error
}

// AnalysisConsumer 消费 AnalysisRequest，分析后把 AnalysisResult 发到 ReplyTo 队列或结果交换机
type AnalysisConsumer struct {
	analyzer  *analyzer.Analyzer
	reader    reader.Reader
	publisher Publisher
	cfg       config.RabbitMQConfig
	timeout   time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAnalysisConsumer 创建消费者，timeout 为单条消息的分析超时
func NewAnalysisConsumer(a *analyzer.Analyzer, r reader.Reader, p Publisher, cfg config.RabbitMQConfig, timeout time.Duration) *AnalysisConsumer {
	return &AnalysisConsumer{
		analyzer:  a,
		reader:    r,
		publisher: p,
		cfg:       cfg,
		timeout:   timeout,
		logger:    logger.Component("analysis_consumer"),
		now:       time.Now,
	}
}

// Start 声明队列和结果交换机并开始消费，ctx 取消后停止
func (c *AnalysisConsumer) Start(ctx context.Context, mq storage.MessageQueue) (<-chan struct{}, error) {
	if err := mq.EnsureQueue(c.cfg.AnalysisQueue, true); err != nil {
		return nil, err
	}
	if c.cfg.ResultExchange != "" {
		if err := mq.EnsureExchange(c.cfg.ResultExchange, "direct", true); err != nil {
			return nil, err
		}
	}
	return mq.StartConsumer(ctx, c.cfg.AnalysisQueue, c.cfg.PrefetchCount, c.cfg.Workers, c.Handle)
}

// Handle 处理一条消息。结果发布成功（或无处可发）时返回 true，发布失败时返回 false，由消费循环决定重新入队或丢弃。
func (c *AnalysisConsumer) Handle(ctx context.Context, d amqp.Delivery) bool {
	ctx, span := tracer.Start(ctx, "AnalysisConsumer.Handle",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.message_id", d.MessageId),
			attribute.String("messaging.correlation_id", d.CorrelationId),
		))
	defer span.End()

	var req storage.AnalysisRequest
	var result storage.AnalysisResult
	if err := json.Unmarshal(d.Body, &req); err != nil {
		result = c.failure(requestID(req, d), fmt.Errorf("%w: %v", errInvalidRequest, err))
	} else {
		req.RequestID = requestID(req, d)
		result = c.Process(ctx, req)
	}
	if result.Status == storage.StatusFailed {
		tracing.RecordFailure(span, errors.New(result.Error), result.ErrorKind)
	}

	exchange, routingKey := c.replyRoute(d)
	if routingKey == "" {
		c.logger.Warn().Str("request_id", result.RequestID).Msg("消息没有 ReplyTo 且未配置结果路由，结果被丢弃")
		return true
	}

	correlationID := d.CorrelationId
	if correlationID == "" {
		correlationID = result.RequestID
	}
	err := c.publisher.PublishJSON(ctx, exchange, routingKey, result, storage.PublishOptions{
		CorrelationID: correlationID,
		MessageID:     uuid.NewString(),
		Persistent:    true,
	})
	if err != nil {
		tracing.RecordFailure(span, err, "publish")
		c.logger.Error().Err(err).Str("request_id", result.RequestID).Msg("发布分析结果失败")
		return false
	}
	return true
}

// Process 读取文档并分析
func (c *AnalysisConsumer) Process(ctx context.Context, req storage.AnalysisRequest) storage.AnalysisResult {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resumeText, err := c.resolve(ctx, req.ResumeText, req.ResumePath, "resume")
	if err != nil {
		return c.failure(req.RequestID, err)
	}
	jdText, err := c.resolve(ctx, req.JobDescription, req.JDPath, "job_description")
	if err != nil {
		return c.failure(req.RequestID, err)
	}

	report, err := c.analyzer.Analyze(ctx, resumeText, jdText)
	if err != nil {
		return c.failure(req.RequestID, err)
	}
	report.AnalysisID = req.RequestID

	c.logger.Info().
		Str("request_id", req.RequestID).
		Float64("overall", report.OverallMatchPercent).
		Msg("异步分析完成")
	return storage.AnalysisResult{
		RequestID:   req.RequestID,
		Status:      storage.StatusCompleted,
		Report:      report,
		CompletedAt: c.now(),
	}
}

// resolve 文本优先，其次通过路径读取
func (c *AnalysisConsumer) resolve(ctx context.Context, text, path, field string) (string, error) {
	if text != "" {
		return text, nil
	}
	if path == "" {
		return "", fmt.Errorf("%w: %s 需要提供文本或路径", errInvalidRequest, field)
	}
	if c.reader == nil {
		return "", fmt.Errorf("%w: 未配置文档读取器", errInvalidRequest)
	}
	return c.reader.Read(ctx, path)
}

func (c *AnalysisConsumer) failure(requestID string, err error) storage.AnalysisResult {
	c.logger.Warn().Err(err).Str("request_id", requestID).Msg("异步分析失败")
	return storage.AnalysisResult{
		RequestID:   requestID,
		Status:      storage.StatusFailed,
		Error:       err.Error(),
		ErrorKind:   ErrorKind(err),
		CompletedAt: c.now(),
	}
}

func (c *AnalysisConsumer) replyRoute(d amqp.Delivery) (exchange, routingKey string) {
	if d.ReplyTo != "" {
		return "", d.ReplyTo
	}
	return c.cfg.ResultExchange, c.cfg.ResultRoutingKey
}

func requestID(req storage.AnalysisRequest, d amqp.Delivery) string {
	switch {
	case req.RequestID != "":
		return req.RequestID
	case d.CorrelationId != "":
		return d.CorrelationId
	case d.MessageId != "":
		return d.MessageId
	default:
		return uuid.NewString()
	}
}

// ErrorKind 把错误归类为 AnalysisResult.ErrorKind
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, analyzer.ErrEmptyDocument):
		return KindEmptyDocument
	case errors.Is(err, reader.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, reader.ErrUnreadable):
		return KindUnreadable
	case errors.Is(err, errInvalidRequest):
		return KindInvalidRequest
	default:
		return KindInternal
	}
}
