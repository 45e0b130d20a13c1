// cmd/mcp/main.go
package main

import (
	"io"
	"log"

	"github.com/Corphon/InterviewScribe/internal/app"
	"github.com/Corphon/InterviewScribe/internal/config"
	"github.com/Corphon/InterviewScribe/internal/mcpserver"
	"github.com/Corphon/InterviewScribe/internal/utils"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// stdout 属于MCP协议，日志只写文件
	logger := utils.NewLogger(io.Discard, utils.ParseLogLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		if err := logger.OpenFile(cfg.LogFile); err != nil {
			log.Fatalf("打开日志文件失败: %v", err)
		}
		defer logger.Close()
	}

	a, err := app.New(cfg, logger, nil)
	if err != nil {
		log.Fatalf("初始化服务失败: %v", err)
	}

	logger.Info("MCP server starting", map[string]interface{}{"mode": a.Mode().String()})
	if err := mcpserver.New(a, version).ServeStdio(); err != nil {
		logger.Error("MCP server stopped", map[string]interface{}{"error": err.Error()})
		log.Fatalf("MCP服务异常退出: %v", err)
	}
}
