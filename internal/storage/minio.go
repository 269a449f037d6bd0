package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
)

// maxObjectSize 单个文档对象的大小上限
const maxObjectSize = 32 << 20

// MinIO 从对象存储读取简历和JD原件，实现 reader.ObjectStore
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	logger zerolog.Logger
}

// NewMinIO 创建MinIO客户端，并确认默认存储桶可访问
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("MinIO endpoint 不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client: client,
		cfg:    cfg,
		logger: logger.Component("minio"),
	}

	if cfg.BucketName != "" {
		exists, err := client.BucketExists(ctx, cfg.BucketName)
		if err != nil {
			return nil, fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", cfg.BucketName, err)
		}
		if !exists {
			m.logger.Warn().Str("bucket", cfg.BucketName).Msg("默认存储桶不存在")
		}
	}

	m.logger.Info().Str("endpoint", cfg.Endpoint).Msg("MinIO客户端初始化成功")
	return m, nil
}

// DefaultBucket 配置中的默认存储桶
func (m *MinIO) DefaultBucket() string {
	return m.cfg.BucketName
}

// GetObjectBytes 读取对象的全部内容
func (m *MinIO) GetObjectBytes(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		bucket = m.cfg.BucketName
	}

	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucket, key, err)
	}
	defer obj.Close()

	// 检查对象状态，对象不存在或无权限时在这里返回错误
	stat, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucket, key, err)
	}
	if stat.Size > maxObjectSize {
		return nil, fmt.Errorf("对象 %s/%s 过大: %d 字节", bucket, key, stat.Size)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucket, key, err)
	}
	m.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int("bytes", len(data)).
		Str("content_type", stat.ContentType).
		Msg("对象下载完成")
	return data, nil
}
