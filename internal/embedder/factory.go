package embedder

import (
	"fmt"

	"github.com/cloudwego/eino/components/embedding"

	"resume-matcher/internal/config"
)

// Build 按配置组装向量模型，返回模型和用于日志的模型名。
// 远程模型由内到外为 HTTP -> 限流重试 -> 缓存；cache 为 nil 时不缓存。
func Build(cfg config.EmbeddingConfig, cache VectorCache) (embedding.Embedder, string, error) {
	switch cfg.Provider {
	case "", "lexical":
		return NewLexicalEmbedder(0), LexicalModel, nil
	case "openai":
		remote, err := NewHTTPEmbedder(cfg)
		if err != nil {
			return nil, "", fmt.Errorf("创建远程向量模型失败: %w", err)
		}
		var e embedding.Embedder = remote
		if cfg.QPM > 0 || cfg.MaxRetries > 0 {
			e = NewRateLimitedEmbedder(e, cfg.QPM, cfg.MaxRetries)
		}
		if cache != nil {
			e = NewCachedEmbedder(e, cache, remote.Model())
		}
		return e, remote.Model(), nil
	default:
		return nil, "", fmt.Errorf("未知的 embedding provider: %q", cfg.Provider)
	}
}
