// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 支持的LLM提供者
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Mode 决定三类生成任务使用离线实现还是AI实现，进程内只解析一次
type Mode int

const (
	ModeOffline Mode = iota
	ModeAI
)

// String 返回模式名称
func (m Mode) String() string {
	switch m {
	case ModeAI:
		return "ai"
	case ModeOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Config 存储应用配置
type Config struct {
	Port      string `yaml:"port"`
	DebugMode bool   `yaml:"debug_mode"`
	LogLevel  string `yaml:"log_level"`
	LogFile   string `yaml:"log_file"`

	// LLM相关配置
	LLMProvider        string `yaml:"llm_provider"`
	APIKey             string `yaml:"-"` // 凭证只从环境变量读取
	BaseURL            string `yaml:"base_url"`
	TextModel          string `yaml:"text_model"`
	TranscriptionModel string `yaml:"transcription_model"`

	// 生成相关配置
	GenerationTimeout      time.Duration `yaml:"generation_timeout"`
	DefaultQuestionCount   int           `yaml:"default_question_count"`
	DefaultTargetWordCount int           `yaml:"default_target_word_count"`
	OfflineLatency         time.Duration `yaml:"offline_latency"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Port:                   "4000",
		DebugMode:              false,
		LogLevel:               "info",
		LLMProvider:            ProviderOpenAI,
		GenerationTimeout:      60 * time.Second,
		DefaultQuestionCount:   5,
		DefaultTargetWordCount: 400,
	}
}

// Load 依次加载 .env、YAML配置文件和环境变量，后者优先
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	_ = godotenv.Load()

	cfg := Default()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.APIKey == "" {
		// 只记录提示，不返回错误
		log.Printf("未设置 %s 的API密钥，所有生成任务将使用离线模式", cfg.LLMProvider)
	}

	return cfg, nil
}

// loadFile 读取YAML配置文件，文件不存在时忽略
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("解析配置文件失败 %s: %w", path, err)
	}
	return nil
}

// applyEnv 用环境变量覆盖配置
func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DebugMode = getEnvBool("DEBUG_MODE", cfg.DebugMode)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	cfg.LLMProvider = strings.ToLower(getEnv("LLM_PROVIDER", cfg.LLMProvider))
	cfg.BaseURL = getEnv("LLM_BASE_URL", cfg.BaseURL)
	cfg.TextModel = getEnv("LLM_TEXT_MODEL", cfg.TextModel)
	cfg.TranscriptionModel = getEnv("LLM_TRANSCRIPTION_MODEL", cfg.TranscriptionModel)

	switch cfg.LLMProvider {
	case ProviderGemini:
		cfg.APIKey = getEnv("GEMINI_API_KEY", "")
	default:
		cfg.APIKey = getEnv("OPENAI_API_KEY", "")
	}

	cfg.GenerationTimeout = getEnvDuration("GENERATION_TIMEOUT", cfg.GenerationTimeout)
	cfg.OfflineLatency = getEnvDuration("OFFLINE_LATENCY", cfg.OfflineLatency)
	cfg.DefaultQuestionCount = getEnvInt("DEFAULT_QUESTION_COUNT", cfg.DefaultQuestionCount)
	cfg.DefaultTargetWordCount = getEnvInt("DEFAULT_TARGET_WORD_COUNT", cfg.DefaultTargetWordCount)
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("不支持的LLM提供者: %q", c.LLMProvider)
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("generation_timeout must be positive")
	}
	if c.OfflineLatency < 0 {
		return fmt.Errorf("offline_latency must not be negative")
	}
	if c.DefaultQuestionCount < 1 || c.DefaultQuestionCount > 10 {
		return fmt.Errorf("default_question_count must be between 1 and 10")
	}
	if c.DefaultTargetWordCount < 200 || c.DefaultTargetWordCount > 1000 {
		return fmt.Errorf("default_target_word_count must be between 200 and 1000")
	}
	return nil
}

// Mode 根据凭证是否存在解析运行模式
func (c *Config) Mode() Mode {
	if strings.TrimSpace(c.APIKey) != "" {
		return ModeAI
	}
	return ModeOffline
}

// ProviderSettings 转换为LLM提供者初始化参数
func (c *Config) ProviderSettings() map[string]string {
	settings := map[string]string{
		"api_key": c.APIKey,
	}
	if c.BaseURL != "" {
		settings["base_url"] = c.BaseURL
	}
	if c.TextModel != "" {
		settings["default_model"] = c.TextModel
	}
	if c.TranscriptionModel != "" {
		settings["transcription_model"] = c.TranscriptionModel
	}
	return settings
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt 获取整数类型环境变量，解析失败时使用默认值
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("警告: 环境变量 %s=%q 不是整数，使用默认值 %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDuration 获取时长类型环境变量，如 "30s"、"1m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("警告: 环境变量 %s=%q 不是有效时长，使用默认值 %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
