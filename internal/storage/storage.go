package storage

import (
	"context"
	"errors"
	"fmt"

	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
)

// Storage 聚合服务用到的外部组件；未启用的组件为 nil
type Storage struct {
	MinIO    *MinIO    // 简历与 JD 原件
	RabbitMQ *RabbitMQ // 异步分析请求与结果
	Redis    *Redis    // 向量缓存
}

// NewStorage 按配置连接已启用的组件。任一组件失败时关闭已建立的连接并返回合并后的错误。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage: 配置为空")
	}

	s := &Storage{}
	var errs []error

	if cfg.MinIO.Enabled {
		m, err := NewMinIO(ctx, &cfg.MinIO)
		if err != nil {
			errs = append(errs, fmt.Errorf("MinIO: %w", err))
		}
		s.MinIO = m
	}
	if cfg.RabbitMQ.Enabled {
		mq, err := NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			errs = append(errs, fmt.Errorf("RabbitMQ: %w", err))
		}
		s.RabbitMQ = mq
	}
	if cfg.Redis.Enabled {
		logger.Info().Str("address", cfg.Redis.Address).Msg("连接向量缓存")
		rd, err := NewRedisAdapter(&cfg.Redis)
		if err != nil {
			errs = append(errs, fmt.Errorf("Redis: %w", err))
		}
		s.Redis = rd
	}

	if err := errors.Join(errs...); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close 关闭长连接；MinIO 走无状态 HTTP，无需关闭
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭 RabbitMQ 失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭 Redis 失败")
		}
	}
}
