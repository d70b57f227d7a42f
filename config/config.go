package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"next_read/persona"
)

// Widget modes.
const (
	ModeSimulator = "simulator"
	ModeEmbedded  = "embedded"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port" env:"SERVER_PORT"`
		Addr string `yaml:"-"` // 不从配置文件读取，而是在加载后计算
	} `yaml:"server"`
	Gemini struct {
		APIKey     string `yaml:"api_key" env:"GEMINI_API_KEY"`
		Model      string `yaml:"model" env:"GEMINI_MODEL"`
		BaseURL    string `yaml:"base_url" env:"GEMINI_BASE_URL"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"gemini"`
	Webhook struct {
		URL        string `yaml:"url" env:"N8N_WEBHOOK_URL"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"webhook"`
	CORS struct {
		MainDomain string `yaml:"main_domain" env:"MAIN_DOMAIN"` // 为空时允许任意来源
	} `yaml:"cors"`
	Log struct {
		Level    string `yaml:"level" env:"LOG_LEVEL"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`

	DB struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Username        string `yaml:"username" env:"DATABASE_USERNAME"`
		Password        string `yaml:"password" env:"DATABASE_PASSWORD"`
		Database        string `yaml:"database"`
		Charset         string `yaml:"charset"`
		ParseTime       bool   `yaml:"parse_time"`
		DSN             string `yaml:"-" env:"DB_DSN"`    // 为空且未配置 host 时不启用数据库
		MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数
		MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 连接最大生命周期（分钟）
	} `yaml:"database"`
	Catalog struct {
		Path  string `yaml:"path" env:"CATALOG_PATH"` // 为空时使用内置目录
		Watch bool   `yaml:"watch"`
	} `yaml:"catalog"`
	Persona struct {
		MinHistory int                      `yaml:"min_history"` // 触发推荐所需的最少历史条数
		Classifier persona.ClassifierConfig `yaml:",inline"`
	} `yaml:"persona"`
	Widget struct {
		APIHost           string        `yaml:"api_host" env:"WIDGET_API_HOST"`
		Mode              string        `yaml:"mode" env:"WIDGET_MODE"`
		PageContext       string        `yaml:"page_context"`
		PersonaClues      persona.Clues `yaml:"persona_clues"`
		LeadMessageTTLSec int           `yaml:"lead_message_ttl_sec"`
	} `yaml:"widget"`
	Session struct {
		CookieDomain string `yaml:"cookie_domain" env:"SESSION_COOKIE_DOMAIN"`
		MaxAgeDays   int    `yaml:"max_age_days"`
		Secure       bool   `yaml:"secure"`
		BoltPath     string `yaml:"bolt_path" env:"SESSION_BOLT_PATH"`
	} `yaml:"session"`
	Retention struct {
		LeadDays int    `yaml:"lead_days"` // lead_submissions 保留天数
		Cron     string `yaml:"cron"`      // 清理任务的 cron 表达式
	} `yaml:"retention"`
	Timeouts struct {
		RequestSec  int `yaml:"request_sec"`  // 请求超时，单位：秒
		ResponseSec int `yaml:"response_sec"` // 响应超时，单位：秒
		IdleSec     int `yaml:"idle_sec"`     // 空闲超时，单位：秒
	} `yaml:"timeouts"`
}

// Default returns a config populated with built-in defaults.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	cfg.Gemini.TimeoutSec = 30
	cfg.Webhook.TimeoutSec = 10
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.Output = "stdout"
	cfg.DB.Charset = "utf8mb4"
	cfg.DB.ParseTime = true
	cfg.Persona.MinHistory = 2
	cfg.Persona.Classifier = persona.DefaultClassifierConfig()
	cfg.Widget.Mode = ModeSimulator
	cfg.Widget.LeadMessageTTLSec = 5
	cfg.Session.MaxAgeDays = 30
	cfg.Session.Secure = true
	cfg.Session.BoltPath = "data/session.db"
	cfg.Retention.LeadDays = 90
	cfg.Retention.Cron = "0 3 * * *"
	cfg.Timeouts.RequestSec = 15
	cfg.Timeouts.ResponseSec = 60
	cfg.Timeouts.IdleSec = 120
	return &cfg
}

// Load 加载配置：.env → config.yaml → 环境变量覆盖
func Load() *Config {
	cfg, err := LoadFrom(getenv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

// LoadFrom reads the YAML file at path, falling back to defaults plus environment when it is missing or broken.
func LoadFrom(path string) (*Config, error) {
	// 首先尝试加载.env文件中的环境变量
	_ = godotenv.Load() // 忽略错误，如果.env文件不存在，继续使用系统环境变量

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Printf("Error loading %s: %v, falling back to environment variables", path, err)
			cfg = Default()
		} else {
			log.Printf("Loading configuration from %s", path)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Printf("%s not found, loading configuration from environment variables", path)
	} else {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	// Vercel 部署沿用的变量名
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("API_KEY")
	}

	cfg.finalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finalize 计算派生字段
func (c *Config) finalize() {
	c.Server.Addr = fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
	c.Widget.APIHost = strings.TrimSuffix(c.Widget.APIHost, "/")

	if c.DB.DSN == "" && c.DB.Host != "" {
		if c.DB.Charset == "" {
			c.DB.Charset = "utf8mb4"
		}
		parseTime := ""
		if c.DB.ParseTime {
			parseTime = "&parseTime=true"
		}
		c.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s%s",
			c.DB.Username,
			c.DB.Password,
			c.DB.Host,
			c.DB.Port,
			c.DB.Database,
			c.DB.Charset,
			parseTime)
	}
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Widget.Mode != ModeSimulator && c.Widget.Mode != ModeEmbedded {
		return fmt.Errorf("widget.mode must be %q or %q, got %q", ModeSimulator, ModeEmbedded, c.Widget.Mode)
	}
	if c.Persona.MinHistory < 1 {
		return fmt.Errorf("persona.min_history must be at least 1, got %d", c.Persona.MinHistory)
	}
	if err := c.Persona.Classifier.Validate(); err != nil {
		return fmt.Errorf("persona: %w", err)
	}
	if err := c.Widget.PersonaClues.Validate(); err != nil {
		return fmt.Errorf("widget.persona_clues: %w", err)
	}
	if c.Session.MaxAgeDays <= 0 {
		return fmt.Errorf("session.max_age_days must be positive, got %d", c.Session.MaxAgeDays)
	}
	return nil
}

// DatabaseEnabled reports whether a MySQL DSN is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.DB.DSN != ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
