package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SiriusScan/redis-tools/internal/commands"
	_ "github.com/SiriusScan/redis-tools/internal/commands/copykeys"
	_ "github.com/SiriusScan/redis-tools/internal/commands/lazydelete"
	_ "github.com/SiriusScan/redis-tools/internal/commands/statis"
	"github.com/SiriusScan/redis-tools/internal/config"
	"github.com/SiriusScan/redis-tools/internal/endpoint"
	"github.com/SiriusScan/redis-tools/internal/engine"
	"github.com/SiriusScan/redis-tools/internal/logging"
	"github.com/SiriusScan/redis-tools/internal/metrics"
	"github.com/SiriusScan/redis-tools/internal/report"
	"github.com/SiriusScan/redis-tools/internal/store"
)

const pushTimeout = 10 * time.Second

type CLI struct {
	stdout io.Writer
	stderr io.Writer
}

func NewCLI(stdout, stderr io.Writer) *CLI {
	return &CLI{
		stdout: stdout,
		stderr: stderr,
	}
}

// Run executes one operation and returns the process exit status.
func (c *CLI) Run(args []string) int {
	opts, err := parseFlags(args[1:], c.stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(c.stderr, "failed to parse flags: %v\n", err)
		return 1
	}
	if opts.mode == "" {
		return 0
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		fmt.Fprintf(c.stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if opts.uri != "" {
		cfg.Store.URI = opts.uri
	}
	if cfg.Store.URI != "" {
		if _, err := endpoint.Parse(cfg.Store.URI); err != nil {
			fmt.Fprintf(c.stderr, "invalid default address: %v\n", err)
			return 1
		}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(c.stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	collector := metrics.NewCollector()
	engineOpts := engine.Options{
		MaxIterations: cfg.Engine.MaxScanIterations,
		Recorder:      collector,
	}
	if cfg.Engine.DeleteRate > 0 {
		engineOpts.Limiter = rate.NewLimiter(rate.Limit(cfg.Engine.DeleteRate), 1)
	}

	stores := store.NewProvider(*cfg.Store, logger)
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("Failed to close store connections", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := commands.Env{
		Logger: logger,
		Config: cfg,
		Engine: engine.New(logger, engineOpts),
		Stores: stores,
		Stdout: c.stdout,
	}

	rep := report.New(runID, opts.mode, opts.values)
	rep.SetRunning()
	logger.Debug("Operation started", zap.String("operation", opts.mode), zap.Strings("args", opts.values))

	keys, err := commands.Dispatch(ctx, env, opts.mode, opts.values)
	if err != nil {
		rep.SetFailed(keys, err)
		logger.Error("Operation failed", rep.Fields()...)
		fmt.Fprintf(c.stderr, "%s failed: %v\n", opts.mode, err)
	} else {
		rep.SetCompleted(keys)
		logger.Info("Operation completed", rep.Fields()...)
	}
	collector.ObserveOperation(opts.mode, rep.Duration(), err)

	if opts.reportPath != "" {
		if err := rep.WriteFile(opts.reportPath); err != nil {
			logger.Warn("Failed to write report", zap.String("path", opts.reportPath), zap.Error(err))
		}
	}
	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		if err := collector.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			logger.Warn("Failed to push metrics", zap.Error(err))
		}
		cancel()
	}

	return rep.ExitCode
}
