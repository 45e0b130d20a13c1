// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/InterviewScribe/internal/api"
	"github.com/Corphon/InterviewScribe/internal/app"
	"github.com/Corphon/InterviewScribe/internal/config"
	"github.com/Corphon/InterviewScribe/internal/utils"
)

const (
	shutdownTimeout       = 30 * time.Second
	metricsReportInterval = 5 * time.Minute
)

func main() {
	log.Println("🚀 启动 InterviewScribe 服务器...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	log.Printf("✅ 配置加载完成，端口: %s", cfg.Port)

	// 2. 初始化日志
	logger := utils.NewLogger(os.Stdout, utils.ParseLogLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		if err := logger.OpenFile(cfg.LogFile); err != nil {
			log.Fatalf("打开日志文件失败: %v", err)
		}
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 事件推送中心
	hub := api.NewEventHub(logger)
	go hub.Run(ctx)

	// 4. 按依赖顺序初始化服务
	a, err := app.New(cfg, logger, hub)
	if err != nil {
		log.Fatalf("初始化服务失败: %v", err)
	}
	log.Printf("✅ 服务初始化完成，模式: %s，提供者: %s", a.Mode(), a.ProviderName())
	a.Metrics.StartMetricsCollection(ctx, metricsReportInterval)

	// 5. 设置路由
	if cfg.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(api.HandlerDeps{
		Interviews:     a.Interviews,
		Transcriptions: a.Transcriptions,
		Articles:       a.Articles,
		Exports:        a.Exports,
		Metrics:        a.Metrics,
		Hub:            hub,
		Mode:           a.Mode(),
		ProviderName:   a.ProviderName(),
	})
	router := api.SetupRouter(handler, logger)
	log.Println("✅ 路由设置完成")

	// 6. 启动服务器
	log.Printf("🌐 服务器启动在端口 %s", cfg.Port)
	log.Printf("🔗 访问地址: http://localhost:%s/api/health", cfg.Port)

	runWithGracefulShutdown(router, cfg.Port, cancel)
}

// runWithGracefulShutdown 启动服务器并在收到中断信号后优雅关闭
func runWithGracefulShutdown(router *gin.Engine, port string, stopBackground context.CancelFunc) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ 启动服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ 服务器强制关闭: %v", err)
	}
	// 关闭事件中心和后台指标任务
	stopBackground()

	log.Println("✅ 服务器优雅关闭完成")
}
