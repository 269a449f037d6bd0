package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-matcher/internal/config"
	"resume-matcher/internal/constants"
	"resume-matcher/internal/tracing"
)

var (
	errRedisClosed = errors.New("redis: 客户端未初始化")
	redisTracer    = otel.Tracer("resume-matcher/storage/redis")
)

// Redis 基于 HASH 的文本向量缓存，实现 embedder.VectorCache
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAdapter 按配置建立连接池，挂上 redisotel 追踪后 Ping 一次
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("redis: 缺少地址")
	}

	seconds := func(n int) time.Duration { return time.Duration(n) * time.Second }
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  seconds(cfg.DialTimeoutSeconds),
		ReadTimeout:  seconds(cfg.ReadTimeoutSeconds),
		WriteTimeout: seconds(cfg.WriteTimeoutSeconds),
		MaxRetries:   cfg.MaxRetries,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: 注册追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: 无法连接 %s: %w", cfg.Address, err)
	}

	return NewRedisFromClient(client, cfg), nil
}

// NewRedisFromClient 用已有客户端构造缓存，cfg 可为 nil
func NewRedisFromClient(client *redis.Client, cfg *config.RedisConfig) *Redis {
	r := &Redis{client: client, ttl: constants.DefaultVectorTTL}
	if cfg != nil && cfg.VectorTTLHours > 0 {
		r.ttl = time.Duration(cfg.VectorTTLHours) * time.Hour
	}
	return r
}

func (r *Redis) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.client == nil {
		return errRedisClosed
	}
	return r.client.Ping(ctx).Err()
}

// VectorKey 内容哈希对应的缓存键
func VectorKey(contentKey string) string {
	return fmt.Sprintf(constants.KeyEmbeddingVector, contentKey)
}

// SetVectors 把向量和模型版本写入 HASH 并设置过期时间，所有键在一个 pipeline 中提交
func (r *Redis) SetVectors(ctx context.Context, model string, vectors map[string][]float64) error {
	if r.client == nil {
		return errRedisClosed
	}
	if len(vectors) == 0 {
		return nil
	}

	ctx, span := redisTracer.Start(ctx, "Redis.SetVectors", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "redis"),
		attribute.Int("vectors.count", len(vectors)),
		attribute.String("embedding.model", model),
	)

	pipe := r.client.Pipeline()
	for key, vector := range vectors {
		vectorJSON, err := json.Marshal(vector)
		if err != nil {
			return fmt.Errorf("编码向量 %s 失败: %w", key, err)
		}
		cacheKey := VectorKey(key)
		pipe.HSet(ctx, cacheKey, constants.FieldVector, vectorJSON, constants.FieldModelVersion, model)
		pipe.Expire(ctx, cacheKey, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		tracing.RecordFailure(span, err, "cache")
		return fmt.Errorf("写入向量缓存失败: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetVectors 批量读取向量。缺失、格式错误或模型版本不一致的键不出现在结果中。
func (r *Redis) GetVectors(ctx context.Context, model string, keys []string) (map[string][]float64, error) {
	if r.client == nil {
		return nil, errRedisClosed
	}
	out := make(map[string][]float64, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	ctx, span := redisTracer.Start(ctx, "Redis.GetVectors", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	pipe := r.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HMGet(ctx, VectorKey(key), constants.FieldVector, constants.FieldModelVersion)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		tracing.RecordFailure(span, err, "cache")
		return nil, fmt.Errorf("读取向量缓存失败: %w", err)
	}

	for i, cmd := range cmds {
		vector, ok := decodeVector(cmd.Val(), model)
		if ok {
			out[keys[i]] = vector
		}
	}
	span.SetAttributes(
		attribute.Int("vectors.requested", len(keys)),
		attribute.Int("vectors.hit", len(out)),
	)
	return out, nil
}

// decodeVector 解析 HMGET 返回的 [vector, model_version]
func decodeVector(vals []interface{}, model string) ([]float64, bool) {
	if len(vals) < 2 || vals[0] == nil || vals[1] == nil {
		return nil, false
	}
	version, ok := vals[1].(string)
	if !ok || version != model {
		return nil, false
	}
	vectorJSON, ok := vals[0].(string)
	if !ok || vectorJSON == "" {
		return nil, false
	}
	var vector []float64
	if err := json.Unmarshal([]byte(vectorJSON), &vector); err != nil || len(vector) == 0 {
		return nil, false
	}
	return vector, true
}
