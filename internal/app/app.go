// internal/app/app.go
package app

import (
	"github.com/Corphon/InterviewScribe/internal/config"
	"github.com/Corphon/InterviewScribe/internal/services"
	"github.com/Corphon/InterviewScribe/internal/utils"

	// 注册支持的LLM提供者
	_ "github.com/Corphon/InterviewScribe/internal/llm/providers/google"
	_ "github.com/Corphon/InterviewScribe/internal/llm/providers/openai"
)

// App 持有按依赖顺序构建好的全部服务，HTTP服务器和MCP服务器共用
type App struct {
	Config   *config.Config
	Logger   *utils.Logger
	Metrics  *utils.APIMetrics
	Selector *services.StrategySelector
	LLM      *services.LLMService // 离线模式下为空

	Interviews     *services.InterviewService
	Transcriptions *services.TranscriptionService
	Articles       *services.ArticleService
	Exports        *services.ExportService
}

// New 解析运行模式并初始化服务
func New(cfg *config.Config, logger *utils.Logger, events services.EventPublisher) (*App, error) {
	if logger == nil {
		logger = utils.NopLogger()
	}

	mode := cfg.Mode()
	var llmService *services.LLMService
	if mode == config.ModeAI {
		var err error
		llmService, err = services.NewLLMService(cfg.LLMProvider, cfg.ProviderSettings())
		if err != nil {
			return nil, err
		}
	}

	metrics := utils.NewAPIMetrics(utils.NewMetricsCollector(), logger)
	selector := services.NewStrategySelector(mode, llmService, cfg.OfflineLatency)

	deps := services.Deps{
		Selector:     selector,
		Logger:       logger,
		Metrics:      metrics,
		Events:       events,
		Timeout:      cfg.GenerationTimeout,
		DefaultCount: cfg.DefaultQuestionCount,
		DefaultWords: cfg.DefaultTargetWordCount,
	}

	articles := services.NewArticleService(deps, nil)
	a := &App{
		Config:         cfg,
		Logger:         logger,
		Metrics:        metrics,
		Selector:       selector,
		LLM:            llmService,
		Interviews:     services.NewInterviewService(deps, nil),
		Transcriptions: services.NewTranscriptionService(deps),
		Articles:       articles,
		Exports:        services.NewExportService(articles),
	}

	logger.Info("Services initialized", map[string]interface{}{
		"mode":     mode.String(),
		"provider": a.ProviderName(),
	})
	return a, nil
}

// Mode 当前运行模式
func (a *App) Mode() config.Mode {
	return a.Selector.Mode()
}

// ProviderName 离线模式返回 "offline"
func (a *App) ProviderName() string {
	if a.LLM.IsReady() {
		return a.LLM.GetProviderName()
	}
	return config.ModeOffline.String()
}
