package constants

import "time"

const (
	// ServiceName 默认服务名，用于日志和链路追踪
	ServiceName = "resume-matcher"

	// DefaultVectorTTL 向量缓存的默认过期时间
	DefaultVectorTTL = 24 * time.Hour

	// ObjectScheme 对象存储文档路径前缀
	ObjectScheme = "minio://"
)
