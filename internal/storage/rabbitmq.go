package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
)

var errNoChannel = errors.New("rabbitmq: 无可用通道")

// PublishOptions 发布消息的附加属性
type PublishOptions struct {
	CorrelationID string
	MessageID     string
	Persistent    bool
}

// DeliveryHandler 处理一条消息；返回 false 表示处理失败，由 settle 决定重投或丢弃
type DeliveryHandler func(ctx context.Context, d amqp.Delivery) bool

// MessageQueue worker 依赖的队列能力
type MessageQueue interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, opts PublishOptions) error
	EnsureExchange(exchangeName, exchangeType string, durable bool) error
	EnsureQueue(queueName string, durable bool) error
	BindQueue(queueName, exchangeName, routingKey string) error
	// StartConsumer 返回的 channel 在所有 worker 退出后关闭
	StartConsumer(ctx context.Context, queueName string, prefetchCount, workers int, handler DeliveryHandler) (<-chan struct{}, error)
	Close() error
}

var _ MessageQueue = (*RabbitMQ)(nil)

// RabbitMQ 分析请求和结果的消息通道。已声明的 exchange、队列和绑定记录在 declared 中，重复声明直接返回。
type RabbitMQ struct {
	conn         *amqp.Connection
	channels     sync.Pool
	declareMu    sync.Mutex
	declared     map[string]struct{}
	publishMutex sync.Mutex
	cfg          *config.RabbitMQConfig
	logger       zerolog.Logger
}

// NewRabbitMQ 连接 broker 并确认至少能打开一个通道
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("rabbitmq: 缺少连接地址")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: 连接 broker 失败: %w", err)
	}

	r := &RabbitMQ{
		conn:     conn,
		declared: make(map[string]struct{}),
		cfg:      cfg,
		logger:   logger.Component("rabbitmq"),
	}
	r.channels.New = func() interface{} {
		ch, chErr := conn.Channel()
		if chErr != nil {
			r.logger.Error().Err(chErr).Msg("打开通道失败")
			return nil
		}
		return ch
	}

	probe := r.getChannel()
	if probe == nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: 无法打开通道")
	}
	r.putChannel(probe)

	r.logger.Info().Str("queue", cfg.AnalysisQueue).Msg("已连接 RabbitMQ")
	return r, nil
}

// getChannel 优先复用池中未关闭的通道
func (r *RabbitMQ) getChannel() *amqp.Channel {
	if ch, ok := r.channels.Get().(*amqp.Channel); ok && ch != nil && !ch.IsClosed() {
		return ch
	}
	ch, err := r.conn.Channel()
	if err != nil {
		r.logger.Error().Err(err).Msg("打开通道失败")
		return nil
	}
	return ch
}

func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil && !ch.IsClosed() {
		r.channels.Put(ch)
	}
}

// Close 关闭底层连接，池中的通道随之失效
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// declare 在同一把锁内只执行一次 key 对应的声明
func (r *RabbitMQ) declare(key string, fn func(ch *amqp.Channel) error) error {
	r.declareMu.Lock()
	defer r.declareMu.Unlock()
	if _, ok := r.declared[key]; ok {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return errNoChannel
	}
	defer r.putChannel(ch)

	if err := fn(ch); err != nil {
		return err
	}
	r.declared[key] = struct{}{}
	r.logger.Debug().Str("declared", key).Msg("RabbitMQ资源已就绪")
	return nil
}

// EnsureExchange 声明结果 exchange；默认交换机不能也不需要声明
func (r *RabbitMQ) EnsureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "" || exchangeName == "amq.default" {
		return fmt.Errorf("不能声明默认交换机 %q", exchangeName)
	}
	return r.declare("exchange:"+exchangeName, func(ch *amqp.Channel) error {
		if err := ch.ExchangeDeclare(exchangeName, exchangeType, durable, false, false, false, nil); err != nil {
			return fmt.Errorf("声明exchange %s 失败: %w", exchangeName, err)
		}
		return nil
	})
}

// EnsureQueue 声明分析请求队列
func (r *RabbitMQ) EnsureQueue(queueName string, durable bool) error {
	if queueName == "" {
		return fmt.Errorf("队列名称不能为空")
	}
	return r.declare("queue:"+queueName, func(ch *amqp.Channel) error {
		if _, err := ch.QueueDeclare(queueName, durable, false, false, false, nil); err != nil {
			return fmt.Errorf("声明队列 %s 失败: %w", queueName, err)
		}
		return nil
	})
}

// BindQueue 把队列绑定到 exchange
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	key := fmt.Sprintf("binding:%s:%s:%s", exchangeName, queueName, routingKey)
	return r.declare(key, func(ch *amqp.Channel) error {
		if err := ch.QueueBind(queueName, routingKey, exchangeName, false, nil); err != nil {
			return fmt.Errorf("绑定队列 %s 到 %s 失败: %w", queueName, exchangeName, err)
		}
		return nil
	})
}

// PublishJSON 发布JSON格式的消息，exchangeName 为空时发往默认交换机（routingKey 即队列名）
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, opts PublishOptions) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("rabbitmq: 编码消息失败: %w", err)
	}

	var deliveryMode uint8 = amqp.Transient
	if opts.Persistent {
		deliveryMode = amqp.Persistent
	}

	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	ch := r.getChannel()
	if ch == nil {
		return errNoChannel
	}
	defer r.putChannel(ch)

	// mandatory 与 immediate 均关闭
	return ch.PublishWithContext(ctx, exchangeName, routingKey, false, false,
		amqp.Publishing{
			DeliveryMode:  deliveryMode,
			ContentType:   "application/json",
			CorrelationId: opts.CorrelationID,
			MessageId:     opts.MessageID,
			Body:          body,
			Timestamp:     time.Now(),
		},
	)
}

// StartConsumer 启动 workers 个协程消费队列，ctx 取消后停止。
// 返回的通道在所有协程退出后关闭。
func (r *RabbitMQ) StartConsumer(ctx context.Context, queueName string, prefetchCount, workers int, handler DeliveryHandler) (<-chan struct{}, error) {
	if workers <= 0 {
		workers = 1
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: 打开消费通道失败: %w", err)
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("rabbitmq: 设置 prefetch=%d 失败: %w", prefetchCount, err)
	}

	// 手动确认；消费者标签由 broker 生成
	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("rabbitmq: 订阅队列 %s 失败: %w", queueName, err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r.consume(ctx, id, deliveries, handler)
		}(i)
	}

	go func() {
		wg.Wait()
		ch.Close()
		r.logger.Info().Str("queue", queueName).Msg("RabbitMQ消费者已停止")
		close(done)
	}()

	r.logger.Info().Str("queue", queueName).Int("prefetch", prefetchCount).Int("workers", workers).Msg("RabbitMQ消费者已启动")
	return done, nil
}

func (r *RabbitMQ) consume(ctx context.Context, id int, deliveries <-chan amqp.Delivery, handler DeliveryHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				r.logger.Warn().Int("worker", id).Msg("RabbitMQ通道已关闭")
				return
			}
			r.settle(delivery, handler(ctx, delivery))
		}
	}
}

// settle 成功时确认；失败时首次投递重新入队，已重投过的消息直接丢弃
func (r *RabbitMQ) settle(d amqp.Delivery, ok bool) {
	var err error
	switch {
	case ok:
		err = d.Ack(false)
	case d.Redelivered:
		r.logger.Warn().Str("message_id", d.MessageId).Msg("重投后仍处理失败，丢弃消息")
		err = d.Nack(false, false)
	default:
		err = d.Nack(false, true)
	}
	if err != nil {
		r.logger.Error().Err(err).Str("message_id", d.MessageId).Msg("确认消息失败")
	}
}
