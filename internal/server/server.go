// Package server exposes the HTTP API with fiber.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spigell/careerpath/internal/auth"
	"github.com/spigell/careerpath/internal/resume"
)

const (
	DefaultAddress         = ":5000"
	DefaultBodyLimit       = 10 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Address         string        `mapstructure:"address"`
	BodyLimit       int           `mapstructure:"body-limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// Authenticator registers users, issues and checks access tokens.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	Identify(token string) (*auth.Identity, error)
}

type ResumeParser interface {
	Parse(ctx context.Context, upload *resume.Upload) (*resume.Result, error)
}

type JobLister interface {
	Trending(ctx context.Context) ([]byte, error)
}

// AptitudePredictor maps a decoded questionnaire body to a career label.
type AptitudePredictor interface {
	Predict(raw map[string]any) (int, error)
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Auth      Authenticator
	Resumes   ResumeParser
	Jobs      JobLister
	Predictor AptitudePredictor
}

type Server struct {
	app    *fiber.App
	cfg    Config
	logger *zap.Logger
}

func New(cfg *Config, deps Deps, logger *zap.Logger) (*Server, error) {
	if deps.Auth == nil || deps.Resumes == nil || deps.Jobs == nil || deps.Predictor == nil {
		return nil, errors.New("server: all dependencies are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.BodyLimit <= 0 {
		c.BodyLimit = DefaultBodyLimit
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}

	app := fiber.New(fiber.Config{
		AppName:               "careerpath",
		BodyLimit:             c.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(cors.New())
	app.Use(requestLogger(logger))
	// panics become 500 responses and still reach the request log
	app.Use(recover.New())

	h := &handlers{deps: deps, logger: logger}
	h.register(app)

	return &Server{app: app, cfg: c, logger: logger}, nil
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled and then shuts down gracefully.
// The address is bound before serving starts, so a cancel at any point stops the server.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", zap.String("address", ln.Addr().String()))
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve on %s: %w", s.cfg.Address, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	if err := s.app.ShutdownWithTimeout(s.cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// Shutdown only closes listeners fasthttp already serves on
	_ = ln.Close()

	return <-errCh
}
