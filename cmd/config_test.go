package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/careerpath/internal/store"
)

func TestDecodeConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Server.Address != ":5000" || config.Server.BodyLimit != 10<<20 {
		t.Fatalf("unexpected server defaults: %+v", config.Server)
	}
	if config.Store.Driver != store.DriverMongo || config.Store.Mongo.URI != "mongodb://localhost:27017/NGC" {
		t.Fatalf("unexpected store defaults: %+v", config.Store)
	}
	if config.Auth.TokenTTL != 15*time.Minute {
		t.Fatalf("unexpected token ttl %s", config.Auth.TokenTTL)
	}
	if config.Model.Path != defaultModelPath {
		t.Fatalf("unexpected model path %q", config.Model.Path)
	}
	if config.Jobs.URL != "https://remoteok.io/api" || config.Jobs.Cache.TTL != 5*time.Minute {
		t.Fatalf("unexpected jobs defaults: %+v", config.Jobs)
	}
	if config.AI.Enabled || config.Resume.Archive.Enabled {
		t.Fatalf("optional features must be disabled by default")
	}
}

func TestDecodeConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "careerpath.yaml")
	content := `
server:
  address: 127.0.0.1:8080
  shutdown-timeout: 3s
store:
  driver: postgres
  postgres:
    url: postgres://localhost/careerpath
auth:
  token-ttl: 1h
jobs:
  cache:
    enabled: true
    ttl: 30s
ai:
  enabled: true
  gemini:
    model: gemini-2.5-pro
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Server.Address != "127.0.0.1:8080" || config.Server.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected server config: %+v", config.Server)
	}
	if config.Store.Driver != store.DriverPostgres || config.Store.Postgres.URL != "postgres://localhost/careerpath" {
		t.Fatalf("unexpected store config: %+v", config.Store)
	}
	if config.Auth.TokenTTL != time.Hour {
		t.Fatalf("unexpected token ttl %s", config.Auth.TokenTTL)
	}
	if !config.Jobs.Cache.Enabled || config.Jobs.Cache.TTL != 30*time.Second || config.Jobs.Cache.Addr != "localhost:6379" {
		t.Fatalf("unexpected cache config: %+v", config.Jobs.Cache)
	}
	if !config.AI.Enabled || config.AI.Gemini.Model != "gemini-2.5-pro" {
		t.Fatalf("unexpected ai config: %+v", config.AI)
	}
}

func TestJWTSecretFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "from-env")

	v := viper.New()
	setDefaults(v)
	if err := v.BindEnv("auth.jwt-secret", "JWT_SECRET_KEY"); err != nil {
		t.Fatalf("bind env: %v", err)
	}

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Auth.JWTSecret != "from-env" {
		t.Fatalf("expected secret from environment, got %q", config.Auth.JWTSecret)
	}
}

func TestNewAuthServiceFallbackSecret(t *testing.T) {
	svc, err := newAuthService(&AuthConfig{BcryptCost: 4}, store.NewMemory(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected auth service")
	}
}

func TestNewProfileExtractorDisabled(t *testing.T) {
	extractor, err := newProfileExtractor(t.Context(), &AIConfig{}, zap.NewNop())
	if err != nil || extractor != nil {
		t.Fatalf("expected no extractor, got %v, %v", extractor, err)
	}

	if _, err := newProfileExtractor(t.Context(), &AIConfig{Enabled: true, Provider: "openai"}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unsupported provider")
	}

	if _, err := newProfileExtractor(t.Context(), &AIConfig{Enabled: true}, zap.NewNop()); err == nil {
		t.Fatal("expected error without an api key")
	}
}

func TestReadAnswers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	if err := os.WriteFile(path, []byte(`{"sslc": 80, "school_type": "Public"}`), 0o600); err != nil {
		t.Fatalf("write answers: %v", err)
	}

	raw, err := readAnswers(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw["sslc"] != float64(80) || raw["school_type"] != "Public" {
		t.Fatalf("unexpected answers %v", raw)
	}

	if _, err := readAnswers(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateNumber(t *testing.T) {
	if err := validateNumber(" 7.5 "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateNumber("seven"); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
	for _, input := range []string{"NaN", "Inf", "-Infinity"} {
		if err := validateNumber(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	if !strings.HasPrefix(out.String(), "careerpath version: ") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}
