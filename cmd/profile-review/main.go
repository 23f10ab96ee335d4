// Command profile-review opens a staged-edit review session for one profile.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"profilereview/internal/config"
	"profilereview/internal/observability"
	"profilereview/internal/session"
	"profilereview/internal/transport"
	"profilereview/internal/tui"
)

func main() {
	configPath := flag.String("config", "profile-review.yaml", "path to the console config file")
	logPath := flag.String("log", "", "write debug logs to this file")
	flag.Parse()

	cfg, err := config.LoadConsole(*configPath, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Console, logPath string) error {
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	logOut := io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		closers = append(closers, f)
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var traceOut io.Writer
	if cfg.TraceFile != "" {
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		closers = append(closers, f)
		traceOut = f
	}

	shutdownTracing, err := observability.SetupTracing(ctx, "profile-review", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.WithoutCancel(ctx)) }()

	s, loc, err := newSession(cfg, logger, traceOut)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(tui.NewApp(ctx, s, loc), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// newSession builds the HTTP client and session from cfg. Spans go to traceOut
// when set, otherwise to OpenTelemetry when an endpoint is configured.
func newSession(cfg config.Console, logger *slog.Logger, traceOut io.Writer) (*session.Session, *time.Location, error) {
	tag, err := transport.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone: %w", err)
	}
	clientOpts := []transport.Option{
		transport.WithLanguage(tag),
		transport.WithTimeout(cfg.Timeout),
		transport.WithLogger(logger),
	}
	if cfg.Token != "" {
		clientOpts = append(clientOpts, transport.WithStaticToken(cfg.Token))
	}
	if cfg.RequestsPerSecond > 0 {
		clientOpts = append(clientOpts, transport.WithRateLimit(rate.Limit(cfg.RequestsPerSecond), 1))
	}
	client, err := transport.New(cfg.BaseURL, clientOpts...)
	if err != nil {
		return nil, nil, err
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithLocation(loc),
		session.WithDiffMode(cfg.Diff),
		session.WithMetrics(observability.NewExpvarMetricsRecorder("")),
	}
	if !cfg.Echo() {
		opts = append(opts, session.WithoutServerEcho())
	}
	switch {
	case traceOut != nil:
		opts = append(opts, session.WithTracer(observability.NewJSONTracer(traceOut)))
	case cfg.OTelEndpoint != "":
		opts = append(opts, session.WithTracer(observability.NewOTelTracer(nil)))
	}
	return session.New(cfg.Email, client, opts...), loc, nil
}
