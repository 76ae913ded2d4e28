package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	Database struct {
		TimescaleDB struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"timescaledb"`
	} `yaml:"database"`

	Anthropic struct {
		APIKey         string        `yaml:"api_key"`
		Model          string        `yaml:"model"`
		MaxTokens      int           `yaml:"max_tokens"`
		PollInterval   time.Duration `yaml:"poll_interval"`   // 批处理轮询间隔
		MaxPollWait    time.Duration `yaml:"max_poll_wait"`   // 轮询放弃前的最长等待
		MaxBatchSize   int           `yaml:"max_batch_size"`  // 单个批次的最大请求数
		ImmediateLimit int           `yaml:"immediate_limit"` // 低于该数量时直接同步打分
		QueueRetention time.Duration `yaml:"queue_retention"` // 已完成队列项的保留时长
	} `yaml:"anthropic"`

	Scoring struct {
		MethodologyVersion  string  `yaml:"methodology_version"`
		MinOverallQuality   float64 `yaml:"min_overall_quality"`   // 综合数据质量下限
		MinComponentQuality float64 `yaml:"min_component_quality"` // 基本面/质量/成长分量的质量下限
		NewsWindowDays      int     `yaml:"news_window_days"`      // 情绪计算回看窗口
	} `yaml:"scoring"`

	NATS struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"client_id"`
	} `yaml:"nats"`

	API struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"api"`
}

// LoadConfig 从文件加载配置
func LoadConfig(path string) (*Config, error) {
	// 读取配置文件
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析YAML
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 环境变量覆盖
	overrideFromEnv(&config)

	// 填充默认值
	applyDefaults(&config)

	return &config, nil
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	// 应用名称
	if env := os.Getenv("APP_NAME"); env != "" {
		config.App.Name = env
	}

	// 环境
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Env = env
	}

	// Anthropic配置
	if env := os.Getenv("ANTHROPIC_API_KEY"); env != "" {
		config.Anthropic.APIKey = env
	}
	if env := os.Getenv("ANTHROPIC_MODEL"); env != "" {
		config.Anthropic.Model = env
	}

	// 数据库配置
	if env := os.Getenv("DB_HOST"); env != "" {
		config.Database.TimescaleDB.Host = env
	}
	if env := os.Getenv("DB_PORT"); env != "" {
		var port int
		fmt.Sscanf(env, "%d", &port)
		if port > 0 {
			config.Database.TimescaleDB.Port = port
		}
	}
	if env := os.Getenv("DB_USER"); env != "" {
		config.Database.TimescaleDB.User = env
	}
	if env := os.Getenv("DB_PASSWORD"); env != "" {
		config.Database.TimescaleDB.Password = env
	}
	if env := os.Getenv("DB_NAME"); env != "" {
		config.Database.TimescaleDB.DBName = env
	}

	// NATS配置
	if env := os.Getenv("NATS_URL"); env != "" {
		config.NATS.URL = env
	}
	if env := os.Getenv("NATS_CLIENT_ID"); env != "" {
		config.NATS.ClientID = env
	}

	// API配置
	if env := os.Getenv("API_PORT"); env != "" {
		config.API.Port = env
	}
}

// applyDefaults 填充未配置项的默认值
func applyDefaults(config *Config) {
	if config.Anthropic.Model == "" {
		config.Anthropic.Model = "claude-3-5-haiku-latest"
	}
	if config.Anthropic.MaxTokens <= 0 {
		config.Anthropic.MaxTokens = 256
	}
	if config.Anthropic.PollInterval <= 0 {
		config.Anthropic.PollInterval = 30 * time.Second
	}
	if config.Anthropic.MaxPollWait <= 0 {
		config.Anthropic.MaxPollWait = 120 * time.Minute
	}
	if config.Anthropic.MaxBatchSize <= 0 {
		config.Anthropic.MaxBatchSize = 100000
	}
	if config.Anthropic.ImmediateLimit <= 0 {
		config.Anthropic.ImmediateLimit = 5
	}
	if config.Anthropic.QueueRetention <= 0 {
		config.Anthropic.QueueRetention = 72 * time.Hour
	}
	if config.Scoring.MethodologyVersion == "" {
		config.Scoring.MethodologyVersion = "2.1"
	}
	if config.Scoring.MinOverallQuality <= 0 {
		config.Scoring.MinOverallQuality = 0.4
	}
	if config.Scoring.MinComponentQuality <= 0 {
		config.Scoring.MinComponentQuality = 0.3
	}
	if config.Scoring.NewsWindowDays <= 0 {
		config.Scoring.NewsWindowDays = 30
	}
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev" // 默认开发环境
	}

	return fmt.Sprintf("configs/%s/app.yaml", env)
}
