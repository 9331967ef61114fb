package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/careerpath/internal/ai"
	"github.com/spigell/careerpath/internal/ai/gemini"
	"github.com/spigell/careerpath/internal/auth"
	"github.com/spigell/careerpath/internal/jobs"
	"github.com/spigell/careerpath/internal/logger"
	"github.com/spigell/careerpath/internal/predictor"
	"github.com/spigell/careerpath/internal/resume"
	"github.com/spigell/careerpath/internal/secrets"
	"github.com/spigell/careerpath/internal/server"
	"github.com/spigell/careerpath/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default :5000)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the careerpath api", zap.String("version", version))

	// credentials are tagged json:"-"
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	p, err := predictor.Load(config.Model.Path, logger.Named("predictor"))
	if err != nil {
		logger.Fatal("loading prediction artifact", zap.String("path", config.Model.Path), zap.Error(err))
	}

	users, err := store.Open(ctx, config.Store, logger.Named("store"))
	if err != nil {
		logger.Fatal("opening user store", zap.Error(err))
	}
	defer func() {
		if err := users.Close(context.Background()); err != nil {
			logger.Warn("closing user store", zap.Error(err))
		}
	}()

	authService, err := newAuthService(config.Auth, users, logger)
	if err != nil {
		logger.Fatal("configuring auth", zap.Error(err),
			zap.String("hint", "set JWT_SECRET_KEY or auth.jwt-secret-file"),
		)
	}

	jobsClient, closeCache := newJobsClient(ctx, config.Jobs, logger)
	defer closeCache()

	parser, err := newResumeParser(ctx, config, logger)
	if err != nil {
		logger.Fatal("configuring resume parser", zap.Error(err))
	}

	srv, err := server.New(config.Server, server.Deps{
		Auth:      authService,
		Resumes:   parser,
		Jobs:      jobsClient,
		Predictor: p,
	}, logger.Named("http"))
	if err != nil {
		logger.Fatal("creating http server", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "shutdown requested"))
}

func newAuthService(cfg *AuthConfig, users store.UserStore, logger *zap.Logger) (*auth.Service, error) {
	secret, err := secrets.Load(secrets.Source{
		Name:     "jwt secret",
		Value:    cfg.JWTSecret,
		File:     cfg.JWTSecretFile,
		Fallback: fallbackJWTSecret,
	})
	if err != nil {
		return nil, err
	}
	if secret.IsFallback() {
		logger.Warn("JWT_SECRET_KEY is not set, tokens are signed with the fallback secret")
	}

	tokens, err := auth.NewTokens(secret.Value, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	return auth.NewService(users, tokens, cfg.BcryptCost, logger.Named("auth")), nil
}

// newJobsClient returns the client and a function releasing its cache connection.
// A cache that cannot be reached is skipped.
func newJobsClient(ctx context.Context, cfg *jobs.Config, logger *zap.Logger) (*jobs.Client, func()) {
	client := jobs.New(cfg, logger.Named("jobs"))
	noop := func() {}

	if cfg.Cache == nil || !cfg.Cache.Enabled {
		return client, noop
	}

	cache, err := jobs.NewRedisCache(ctx, cfg.Cache)
	if err != nil {
		logger.Warn("job cache disabled", zap.Error(err))
		return client, noop
	}

	logger.Info("job cache enabled", zap.String("addr", cfg.Cache.Addr), zap.Duration("ttl", cfg.Cache.TTL))
	client.WithCache(cache, cfg.Cache.TTL)

	return client, func() {
		if err := cache.Close(); err != nil {
			logger.Warn("closing job cache", zap.Error(err))
		}
	}
}

func newResumeParser(ctx context.Context, config *Config, logger *zap.Logger) (*resume.Parser, error) {
	extractor, err := newProfileExtractor(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}

	var archiver resume.Archiver
	if archive := config.Resume.Archive; archive != nil && archive.Enabled {
		s3Archiver, err := resume.NewS3Archiver(ctx, archive)
		if err != nil {
			return nil, fmt.Errorf("resume archive: %w", err)
		}
		logger.Info("resume archive enabled", zap.String("bucket", archive.Bucket))
		archiver = s3Archiver
	}

	return resume.New(extractor, archiver, logger.Named("resume")), nil
}

func newProfileExtractor(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.ProfileExtractor, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	if cfg.Provider != "" && cfg.Provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey.Value, gcfg.Model)
	if err != nil {
		return nil, err
	}

	logger.Info("resume profile extraction enabled", zap.String("model", generator.Model()))

	return gemini.NewExtractor(generator, logger.Named("ai"), gcfg.MaxLogLength), nil
}
