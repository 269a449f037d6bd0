package reader

import (
	"context"
	"fmt"
	"strings"

	"resume-matcher/internal/constants"
)

// ObjectScheme 对象存储中的文档路径前缀，格式为 minio://bucket/key
const ObjectScheme = constants.ObjectScheme

// ObjectStore 按桶和键读取对象内容
type ObjectStore interface {
	GetObjectBytes(ctx context.Context, bucket, key string) ([]byte, error)
}

// ObjectReader 读取 minio://bucket/key 形式的文档，其他路径交给本地文件读取
type ObjectReader struct {
	store ObjectStore
	files *FileReader
}

// NewObjectReader 创建对象存储文档读取器
func NewObjectReader(store ObjectStore, files *FileReader) *ObjectReader {
	return &ObjectReader{store: store, files: files}
}

// ParseObjectPath 把 minio://bucket/key 拆分为桶和键
func ParseObjectPath(path string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(path, ObjectScheme)
	if !ok {
		return "", "", fmt.Errorf("不是对象存储路径: %s", path)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("对象存储路径缺少桶或键: %s", path)
	}
	return bucket, key, nil
}

// Read 实现 Reader
func (o *ObjectReader) Read(ctx context.Context, path string) (string, error) {
	if !strings.HasPrefix(path, ObjectScheme) {
		return o.files.Read(ctx, path)
	}
	if _, err := DetectFormat(path); err != nil {
		return "", err
	}
	bucket, key, err := ParseObjectPath(path)
	if err != nil {
		return "", NewUnreadableError(path, "parse_path", err)
	}
	if o.store == nil {
		return "", NewUnreadableError(path, "download", fmt.Errorf("未配置对象存储"))
	}
	data, err := o.store.GetObjectBytes(ctx, bucket, key)
	if err != nil {
		return "", NewUnreadableError(path, "download", err)
	}
	return o.files.ReadBytes(ctx, key, data)
}
