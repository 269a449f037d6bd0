package router

import (
	"context"
	"crypto/subtle"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-matcher/internal/api/handler"
)

// RegisterRoutes 注册 API 路由；authKeys 非空时分析接口需要 Bearer API Key
func RegisterRoutes(h *server.Hertz, analysisHandler *handler.AnalysisHandler, authKeys []string) {
	api := h.Group("/api/v1")

	// 健康检查不做鉴权
	api.GET("/health", analysisHandler.HandleHealth)

	analyze := api.Group("/analyze")
	if len(authKeys) > 0 {
		analyze.Use(APIKeyAuth(authKeys))
	}
	analyze.POST("", analysisHandler.HandleAnalyze)
	analyze.POST("/upload", analysisHandler.HandleAnalyzeUpload)
}

// APIKeyAuth 基于 keyauth 的 Bearer Key 校验中间件
func APIKeyAuth(keys []string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "invalid or missing API key"})
		}),
	)
}
