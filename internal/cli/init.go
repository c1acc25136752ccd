// Package cli provides the initialization shared by the planner commands:
// environment, configuration, logging and opening a planner session.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgetplanner/internal/amqp"
	"budgetplanner/internal/backend"
	"budgetplanner/internal/config"
	"budgetplanner/internal/log"
	"budgetplanner/internal/services"
)

// SetupLogger builds the process logger from cfg and installs it as the slog
// default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	logCfg := log.DefaultConfig()
	logCfg.Component = log.ComponentCLI
	if out != nil {
		logCfg.Output = out
	}
	if cfg != nil {
		logCfg.Level = log.ParseLevel(cfg.LogLevel)
		logCfg.Format = cfg.LogFormat
	}
	logger := log.New(logCfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Session is an opened planner plus the resources backing it.
type Session struct {
	Planner *services.Planner
	Config  *config.Config
	Logger  *log.Logger
	AMQP    *amqp.Client

	backend     *backend.BackendResult
	unsubscribe func()
}

// OpenSession creates the configured slot backend and restores the planner
// from it. When AMQP is configured, change events are published; a broker
// that cannot be reached is logged and skipped.
func OpenSession(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Discard()
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	planner, err := services.Open(ctx, res.Slots, logger)
	if err != nil {
		res.Close()
		return nil, err
	}

	s := &Session{Planner: planner, Config: cfg, Logger: logger, backend: res}
	logger.DebugContext(ctx, "Planner opened",
		log.FieldBackend, cfg.DataBackend,
		log.FieldOperation, log.OpStartup)

	if cfg.AMQPEnabled() {
		client, err := ConnectAMQP(cfg, logger)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events",
				log.FieldError, err.Error(), log.FieldErrorType, log.ErrorTypeNetwork)
		} else {
			s.AMQP = client
			s.unsubscribe = planner.Subscribe(client)
			logger.InfoContext(ctx, "Publishing change events",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	return s, nil
}

// ConnectAMQP dials the configured broker.
func ConnectAMQP(cfg *config.Config, logger *log.Logger) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		return nil, errors.New("AMQP_URL is not set")
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqp.Options{
		PublishTimeout: cfg.PublishTimeout,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect AMQP: %w", err)
	}
	return client, nil
}

// Close stops publishing and releases the backend.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	var errs []error
	if s.AMQP != nil {
		errs = append(errs, s.AMQP.Close())
	}
	errs = append(errs, s.backend.Close())
	return errors.Join(errs...)
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
		}
	}()
	return ctx, stop
}
