package cmd

import (
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/careerpath/internal/auth"
	"github.com/spigell/careerpath/internal/jobs"
	"github.com/spigell/careerpath/internal/resume"
	"github.com/spigell/careerpath/internal/server"
	"github.com/spigell/careerpath/internal/store"
)

const (
	defaultModelPath = "models/svm_model_with_fs.json"
	// matches the secret the service has always used when JWT_SECRET_KEY is unset
	fallbackJWTSecret = "fallback_secret_key"
)

type Config struct {
	Server *server.Config `mapstructure:"server"`
	Store  *store.Config  `mapstructure:"store"`
	Auth   *AuthConfig    `mapstructure:"auth"`
	Model  *ModelConfig   `mapstructure:"model"`
	Jobs   *jobs.Config   `mapstructure:"jobs"`
	Resume *ResumeConfig  `mapstructure:"resume"`
	AI     *AIConfig      `mapstructure:"ai"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt-secret" json:"-"`
	JWTSecretFile string        `mapstructure:"jwt-secret-file"`
	TokenTTL      time.Duration `mapstructure:"token-ttl"`
	BcryptCost    int           `mapstructure:"bcrypt-cost"`
}

type ModelConfig struct {
	Path string `mapstructure:"path"`
}

type ResumeConfig struct {
	Archive *resume.ArchiveConfig `mapstructure:"archive"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", server.DefaultAddress)
	v.SetDefault("server.body-limit", server.DefaultBodyLimit)
	v.SetDefault("server.shutdown-timeout", server.DefaultShutdownTimeout)

	v.SetDefault("store.driver", store.DriverMongo)
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017/NGC")
	v.SetDefault("store.postgres.url", "")

	v.SetDefault("auth.jwt-secret", "")
	v.SetDefault("auth.jwt-secret-file", "")
	v.SetDefault("auth.token-ttl", auth.DefaultTokenTTL)
	v.SetDefault("auth.bcrypt-cost", auth.DefaultBcryptCost)

	v.SetDefault("model.path", defaultModelPath)

	v.SetDefault("jobs.url", jobs.DefaultURL)
	v.SetDefault("jobs.timeout", jobs.DefaultTimeout)
	v.SetDefault("jobs.cache.enabled", false)
	v.SetDefault("jobs.cache.addr", "localhost:6379")
	v.SetDefault("jobs.cache.ttl", jobs.DefaultCacheTTL)

	v.SetDefault("resume.archive.enabled", false)
	v.SetDefault("resume.archive.bucket", "")
	v.SetDefault("resume.archive.region", "auto")
	v.SetDefault("resume.archive.endpoint", "")
	v.SetDefault("resume.archive.access-key", "")
	v.SetDefault("resume.archive.secret-key", "")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	if config.Server == nil {
		config.Server = &server.Config{}
	}
	if config.Store == nil {
		config.Store = &store.Config{}
	}
	if config.Auth == nil {
		config.Auth = &AuthConfig{}
	}
	if config.Model == nil {
		config.Model = &ModelConfig{}
	}
	if config.Model.Path == "" {
		config.Model.Path = defaultModelPath
	}
	if config.Jobs == nil {
		config.Jobs = &jobs.Config{}
	}
	if config.Resume == nil {
		config.Resume = &ResumeConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}

	return config, nil
}
