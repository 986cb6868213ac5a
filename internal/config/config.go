// Package config 加载服务配置：默认值 -> YAML 文件 -> .env -> 环境变量，后者覆盖前者
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"PortfolioCMS/internal/models"
)

// Config 完整配置
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Content ContentConfig `yaml:"content"`
	Upload  UploadConfig  `yaml:"upload"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	StaticDir       string        `yaml:"staticDir" env:"STATIC_DIR"`
	PublicDir       string        `yaml:"publicDir" env:"PUBLIC_DIR"`
	SiteURL         string        `yaml:"siteURL" env:"SITE_URL"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
}

// AuthConfig 管理员凭据与会话
type AuthConfig struct {
	AdminUsername     string        `yaml:"adminUsername" env:"ADMIN_USERNAME"`
	AdminPassword     string        `yaml:"adminPassword" env:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `yaml:"adminPasswordHash" env:"ADMIN_PASSWORD_HASH"`
	BcryptCost        int           `yaml:"bcryptCost" env:"BCRYPT_COST"`
	SessionSecret     string        `yaml:"sessionSecret" env:"SESSION_SECRET"`
	SessionTTL        time.Duration `yaml:"sessionTTL" env:"SESSION_TTL"`
	CookieSecure      bool          `yaml:"cookieSecure" env:"COOKIE_SECURE"`
}

// ContentConfig 内容存储方式与目录
type ContentConfig struct {
	Strategy   models.ContentStrategy `yaml:"strategy" env:"CONTENT_STRATEGY"`
	DataDir    string                 `yaml:"dataDir" env:"DATA_DIR"`
	ContentDir string                 `yaml:"contentDir" env:"CONTENT_DIR"`
}

// UploadConfig 图片上传
type UploadConfig struct {
	Backend            string   `yaml:"backend" env:"UPLOAD_BACKEND"`
	MaxSize            int64    `yaml:"maxSize" env:"UPLOAD_MAX_SIZE"`
	DefaultDestination string   `yaml:"defaultDestination" env:"UPLOAD_DEFAULT_DESTINATION"`
	S3                 S3Config `yaml:"s3" envPrefix:"UPLOAD_S3_"`
}

// S3Config 对象存储参数
type S3Config struct {
	Bucket         string `yaml:"bucket" env:"BUCKET"`
	Region         string `yaml:"region" env:"REGION"`
	Endpoint       string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKeyID    string `yaml:"accessKeyId" env:"ACCESS_KEY_ID"`
	SecretKey      string `yaml:"secretKey" env:"SECRET_KEY"`
	BaseURL        string `yaml:"baseUrl" env:"BASE_URL"`
	ForcePathStyle bool   `yaml:"forcePathStyle" env:"FORCE_PATH_STYLE"`
}

// LogConfig 日志
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	Dev   bool   `yaml:"dev" env:"LOG_DEV"`
}

// 上传存储后端
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			StaticDir:       "dist",
			PublicDir:       "public",
			SiteURL:         "http://localhost:3000",
			ShutdownTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			AdminUsername: "admin",
			BcryptCost:    12,
			SessionTTL:    24 * time.Hour,
		},
		Content: ContentConfig{
			Strategy:   models.StrategyJSON,
			DataDir:    "data",
			ContentDir: "content",
		},
		Upload: UploadConfig{
			Backend:            BackendLocal,
			MaxSize:            5 << 20,
			DefaultDestination: "uploads",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 依次叠加 YAML 文件（path 为空则跳过）、当前目录的 .env 与环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env 不覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.SiteURL == "" {
		return fmt.Errorf("server.siteURL is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdownTimeout must be positive")
	}
	if c.Auth.AdminUsername == "" {
		return fmt.Errorf("auth.adminUsername is required")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcryptCost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.sessionTTL must be positive")
	}
	if !c.Content.Strategy.Valid() {
		return fmt.Errorf("content.strategy must be %q or %q, got %q",
			models.StrategyJSON, models.StrategyMarkdown, c.Content.Strategy)
	}
	if c.Content.DataDir == "" || c.Content.ContentDir == "" {
		return fmt.Errorf("content.dataDir and content.contentDir are required")
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.maxSize must be positive")
	}
	switch c.Upload.Backend {
	case BackendLocal:
	case BackendS3:
		if c.Upload.S3.Bucket == "" || c.Upload.S3.Region == "" {
			return fmt.Errorf("upload.s3.bucket and upload.s3.region are required for the s3 backend")
		}
	default:
		return fmt.Errorf("upload.backend must be %q or %q, got %q", BackendLocal, BackendS3, c.Upload.Backend)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Addr 监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
