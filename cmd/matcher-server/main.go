package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/api/handler"
	"resume-matcher/internal/api/router"
	"resume-matcher/internal/config"
	embedderpkg "resume-matcher/internal/embedder"
	appLogger "resume-matcher/internal/logger"
	"resume-matcher/internal/reader"
	"resume-matcher/internal/similarity"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/tracing"
	"resume-matcher/internal/worker"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("加载配置失败")
	}
	initLogger(cfg.Logger)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing, cfg.Server.ServiceName, cfg.Server.ServiceVersion)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	emb, model, err := buildEmbedder(cfg, storageManager)
	if err != nil {
		glog.Fatalf("初始化向量模型失败: %v", err)
	}
	glog.Infof("向量模型: %s", model)

	matchAnalyzer, err := analyzer.New(similarity.NewEmbeddingOracle(emb), cfg.Analysis)
	if err != nil {
		glog.Fatalf("初始化分析器失败: %v", err)
	}

	fileReader, err := reader.NewFileReaderFromConfig(ctx, cfg.Reader)
	if err != nil {
		glog.Fatalf("初始化文档读取器失败: %v", err)
	}

	var done <-chan struct{}
	if storageManager.RabbitMQ != nil {
		var docReader reader.Reader = fileReader
		if storageManager.MinIO != nil {
			docReader = reader.NewObjectReader(storageManager.MinIO, fileReader)
		}
		analyzeTimeout := config.GetDuration(cfg.Server.AnalyzeTimeout, time.Minute)
		consumer := worker.NewAnalysisConsumer(matchAnalyzer, docReader, storageManager.RabbitMQ, cfg.RabbitMQ, analyzeTimeout)
		if done, err = consumer.Start(ctx, storageManager.RabbitMQ); err != nil {
			glog.Fatalf("启动分析消费者失败: %v", err)
		}
		glog.Infof("分析消费者已启动，队列: %s", cfg.RabbitMQ.AnalysisQueue)
	}

	serverTracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodyMB<<20),
		serverTracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		glog.CtxInfof(c, "%s %s -> %d (%s)", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start))
	})

	router.RegisterRoutes(h, handler.NewAnalysisHandler(cfg, matchAnalyzer, fileReader), cfg.Auth.Keys)
	glog.Info("HTTP路由注册成功")

	go func() {
		glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancelShutdown()

	// 先停止消费，等待处理中的消息完成
	cancel()
	if done != nil {
		select {
		case <-done:
		case <-shutdownCtx.Done():
			glog.Warn("等待分析消费者退出超时")
		}
	}
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

func initLogger(cfg config.LoggerConfig) {
	appLogger.Init(appLogger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		TimeFormat:   cfg.TimeFormat,
		ReportCaller: cfg.ReportCaller,
	})
	glog.SetLogger(hertzadapter.From(appLogger.Logger))
	if cfg.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	}
}

// buildEmbedder Redis 启用时为远程模型加一层向量缓存
func buildEmbedder(cfg *config.Config, s *storage.Storage) (embedding.Embedder, string, error) {
	if s.Redis != nil {
		return embedderpkg.Build(cfg.Embedding, s.Redis)
	}
	return embedderpkg.Build(cfg.Embedding, nil)
}
