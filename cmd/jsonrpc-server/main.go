package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
	rpchttp "github.com/viant/jsonrpc-tracing/transport/server/http"
	"github.com/viant/jsonrpc-tracing/transport/server/middleware"
	"github.com/viant/jsonrpc-tracing/transport/server/stdio"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand creates the server command, flags override config file values
func newRootCommand() *cobra.Command {
	var (
		configPath string
		envFile    string
		verbose    bool
		logger     *zap.Logger
		flags      = DefaultConfig()
	)
	cmd := &cobra.Command{
		Use:   "jsonrpc-server",
		Short: "JSON-RPC 2.0 server logging unrecognized calls",
		Long: `jsonrpc-server serves a demo method table (ping, echo, time, notify) over stdio or HTTP.

Calls resolving with a method not found failure are logged as
"Received unrecognized RPC request: <description>".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(envFile); err != nil {
				return err
			}
			cfg, err := Load(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, flags)
			if err = cfg.Validate(); err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			logger.Debug("starting server", zap.String("transport", cfg.Transport), zap.String("addr", cfg.Addr))
			return run(ctx, cfg, logger, verbose)
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file with JSONRPC_* overrides, .env is used when present")
	cmd.Flags().StringVar(&flags.Transport, "transport", flags.Transport, "transport: stdio or http")
	cmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "HTTP listen address")
	cmd.Flags().StringVar(&flags.URI, "uri", flags.URI, "HTTP endpoint URI")
	cmd.Flags().IntVar(&flags.MaxConnections, "max-connections", 0, "maximum simultaneous HTTP connections, 0 means unlimited")
	cmd.Flags().DurationVar(&flags.SessionTTL, "session-ttl", 0, "idle HTTP session time to live, 0 disables idle eviction")
	cmd.Flags().IntVar(&flags.MaxSessions, "max-sessions", 0, "maximum stored HTTP sessions, 0 means unlimited")
	cmd.Flags().Float64Var(&flags.RateLimit.Rate, "rate", 0, "admitted calls per second, 0 disables limiting")
	cmd.Flags().IntVar(&flags.RateLimit.Burst, "burst", 0, "rate limit burst")
	cmd.Flags().BoolVar(&flags.Tracing.Spans, "spans", false, "record OpenTelemetry spans")
	cmd.Flags().StringVar(&flags.Logging.Backend, "log-backend", flags.Logging.Backend, "diagnostic log backend: zap or logrus")
	return cmd
}

// applyFlags copies explicitly set flags over cfg
func applyFlags(cmd *cobra.Command, cfg *Config, flags *Config) {
	changed := cmd.Flags().Changed
	if changed("transport") {
		cfg.Transport = flags.Transport
	}
	if changed("addr") {
		cfg.Addr = flags.Addr
	}
	if changed("uri") {
		cfg.URI = flags.URI
	}
	if changed("max-connections") {
		cfg.MaxConnections = flags.MaxConnections
	}
	if changed("session-ttl") {
		cfg.SessionTTL = flags.SessionTTL
	}
	if changed("max-sessions") {
		cfg.MaxSessions = flags.MaxSessions
	}
	if changed("rate") {
		cfg.RateLimit.Rate = flags.RateLimit.Rate
	}
	if changed("burst") {
		cfg.RateLimit.Burst = flags.RateLimit.Burst
	}
	if changed("spans") {
		cfg.Tracing.Spans = flags.Tracing.Spans
	}
	if changed("log-backend") {
		cfg.Logging.Backend = flags.Logging.Backend
	}
}

// loadEnv loads a dotenv file; a missing default .env is not an error
func loadEnv(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %v: %w", path, err)
	}
	return nil
}

// diagnosticLogger returns the sink unrecognized calls are logged to
func diagnosticLogger(cfg *Config, logger *zap.Logger, verbose bool) jsonrpc.Logger {
	if cfg.Logging.Backend == logBackendLogrus {
		aLogger := logrus.New()
		aLogger.SetOutput(os.Stderr)
		aLogger.SetFormatter(&logrus.JSONFormatter{})
		if verbose {
			aLogger.SetLevel(logrus.DebugLevel)
		}
		return jsonrpc.NewLogrusLogger(aLogger)
	}
	return jsonrpc.NewZapLogger(logger)
}

// interceptors returns the configured chain, the first one is the outermost
func interceptors(cfg *Config, logger jsonrpc.Logger) []transport.Interceptor {
	var result []transport.Interceptor
	if cfg.Tracing.Spans {
		result = append(result, middleware.NewSpan(nil))
	}
	result = append(result, middleware.NewTracing(logger))
	if cfg.RateLimit.Rate > 0 {
		result = append(result, middleware.NewRateLimit(cfg.RateLimit.Rate, cfg.RateLimit.Burst))
	}
	return result
}

func run(ctx context.Context, cfg *Config, logger *zap.Logger, verbose bool) error {
	sink := diagnosticLogger(cfg, logger, verbose)
	chain := interceptors(cfg, sink)
	switch cfg.Transport {
	case transportHTTP:
		handler := rpchttp.New(newService,
			rpchttp.WithURI(cfg.URI),
			rpchttp.WithSessionTTL(cfg.SessionTTL),
			rpchttp.WithMaxSessions(cfg.MaxSessions),
			rpchttp.WithLogger(sink),
			rpchttp.WithInterceptors(chain...))
		server := rpchttp.NewServer(cfg.Addr, handler, rpchttp.WithMaxConnections(cfg.MaxConnections))
		return serveHTTP(ctx, server, logger)
	default:
		server := stdio.New(ctx, newService,
			stdio.WithLogger(sink),
			stdio.WithInterceptors(chain...))
		return ignoreCanceled(server.ListenAndServe())
	}
}

// serveHTTP runs server until ctx is done, then shuts it down gracefully
func serveHTTP(ctx context.Context, server *rpchttp.Server, logger *zap.Logger) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Debug("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
