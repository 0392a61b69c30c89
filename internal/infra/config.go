package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string

	// LLM (OpenAI-compatible chat completions, DashScope compatible mode by default).
	LLMAPIKey  string
	LLMModel   string
	LLMBaseURL string
	LLMLogDir  string

	// Tencent Hunyuan text-to-image.
	TencentSecretID  string
	TencentSecretKey string
	TencentRegion    string
	HunyuanBaseURL   string
	PollInterval     time.Duration
	MaxPolls         int

	// Upload backend used to turn local reference images into public URLs.
	UploadBackend string
	ImgBBAPIKey   string
	OSSEndpoint   string
	OSSAccessKey  string
	OSSSecretKey  string
	OSSBucket     string
	OSSNamespace  string
	OSSBaseURL    string
	OSSUseSSL     bool
	ImageHostURL  string

	// OpenRouter image generation.
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string

	// Tools.
	SerperAPIKey string
	OutputDir    string

	// Optional run ledger.
	DatabaseURL string

	// Image host server.
	Port             string
	StoragePath      string
	StorageBaseURL   string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults
// where needed. Credentials are validated by the component that needs them, not
// here, so the image host can run without LLM keys and vice versa.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		LLMAPIKey:         os.Getenv("DASHSCOPE_API_KEY"),
		LLMModel:          getEnv("LLM_MODEL", "qwen3.5-plus"),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
		LLMLogDir:         getEnv("LLM_LOG_DIR", "."),
		TencentSecretID:   os.Getenv("TENCENT_CLOUD_SECRET_ID"),
		TencentSecretKey:  os.Getenv("TENCENT_CLOUD_SECRET_KEY"),
		TencentRegion:     getEnv("TENCENT_CLOUD_REGION", "ap-guangzhou"),
		HunyuanBaseURL:    getEnv("HUNYUAN_BASE_URL", "https://aiart.tencentcloudapi.com"),
		PollInterval:      time.Second * time.Duration(getEnvInt("HUNYUAN_POLL_INTERVAL_SECONDS", 2)),
		MaxPolls:          getEnvInt("HUNYUAN_MAX_POLLS", 60),
		UploadBackend:     getEnv("UPLOAD_BACKEND", "oss"),
		ImgBBAPIKey:       os.Getenv("IMGBB_API_KEY"),
		OSSEndpoint:       os.Getenv("OSS_ENDPOINT"),
		OSSAccessKey:      os.Getenv("OSS_ACCESS_KEY"),
		OSSSecretKey:      os.Getenv("OSS_SECRET_KEY"),
		OSSBucket:         getEnv("OSS_BUCKET", "image-cache"),
		OSSNamespace:      getEnv("OSS_NAMESPACE", "hunyuan_images"),
		OSSBaseURL:        os.Getenv("OSS_BASE_URL"),
		OSSUseSSL:         getEnvBool("OSS_USE_SSL", true),
		ImageHostURL:      os.Getenv("IMAGE_HOST_URL"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_IMGEN_API_KEY"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "google/gemini-3.1-flash-image-preview"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		SerperAPIKey:      os.Getenv("SERPER_API_KEY"),
		OutputDir:         getEnv("OUTPUT_DIR", "generated_images"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              getEnv("PORT", "8080"),
		StoragePath:       getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:    getEnv("STORAGE_BASE_URL", "http://localhost:8080"),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.MaxPolls <= 0 {
		return nil, fmt.Errorf("HUNYUAN_MAX_POLLS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
