// Command profiled serves the reference profile backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"profilereview/internal/adapters/httpapi"
	"profilereview/internal/archive"
	"profilereview/internal/config"
	blobfs "profilereview/internal/infra/blob/fs"
	blobmemory "profilereview/internal/infra/blob/memory"
	blobs3 "profilereview/internal/infra/blob/s3"
	lockmemory "profilereview/internal/infra/lock/memory"
	lockredis "profilereview/internal/infra/lock/redis"
	"profilereview/internal/observability"
	"profilereview/internal/profile"
	"profilereview/pkg/domain"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("profiled exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// backend is the wired server and the resources it must release.
type backend struct {
	handler  http.Handler
	service  *profile.Service
	closers  []func() error
	shutdown func(context.Context) error
}

func (b *backend) close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	if b.shutdown != nil {
		errs = append(errs, b.shutdown(ctx))
	}
	return errors.Join(errs...)
}

func build(ctx context.Context, cfg config.Server, logger *slog.Logger) (*backend, error) {
	b := &backend{}
	fail := func(err error) (*backend, error) {
		_ = b.close(context.WithoutCancel(ctx))
		return nil, err
	}

	shutdown, err := observability.SetupTracing(ctx, "profiled", cfg.OTelEndpoint)
	if err != nil {
		return fail(fmt.Errorf("setup tracing: %w", err))
	}
	b.shutdown = shutdown

	store, err := profile.OpenPersistentStore(ctx, profile.StorageConfig{
		Driver:      profile.StorageDriver(strings.ToLower(cfg.StorageDriver)),
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		return fail(fmt.Errorf("open store: %w", err))
	}
	if c, ok := store.(io.Closer); ok {
		b.closers = append(b.closers, c.Close)
	}

	var blobs archive.Store
	switch strings.ToLower(cfg.BlobDriver) {
	case string(archive.DriverFS):
		fsStore, err := blobfs.New(cfg.BlobDir)
		if err != nil {
			return fail(fmt.Errorf("open archive: %w", err))
		}
		blobs = fsStore
	case string(archive.DriverS3):
		s3store, err := blobs3.New(ctx, blobs3.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
		if err != nil {
			return fail(fmt.Errorf("open archive: %w", err))
		}
		blobs = s3store
	default:
		blobs = blobmemory.New()
	}

	var locker profile.Locker
	switch strings.ToLower(cfg.LockDriver) {
	case "redis":
		redisLocker, closeRedis, err := lockredis.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return fail(fmt.Errorf("open lock: %w", err))
		}
		b.closers = append(b.closers, closeRedis)
		locker = redisLocker
	default:
		locker = lockmemory.New()
	}

	b.service = profile.NewService(store,
		profile.WithArchiver(archive.New(blobs, nil)),
		profile.WithLocker(locker, cfg.LockTTL),
		profile.WithLogger(logger),
	)
	if cfg.SeedFile != "" {
		if err := seed(ctx, b.service, cfg.SeedFile); err != nil {
			return fail(err)
		}
	}

	metrics := observability.NewMetrics(nil)
	b.handler = httpapi.NewHandler(b.service,
		httpapi.WithLogger(logger),
		httpapi.WithMetrics(metrics),
	).Router()
	logger.Info("backend wired", "storage", cfg.StorageDriver, "archive", blobs.Driver(), "lock", cfg.LockDriver)
	return b, nil
}

func seed(ctx context.Context, svc *profile.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var specs []domain.ProfileSpecification
	if err := json.Unmarshal(data, &specs); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}
	if err := svc.Seed(ctx, specs...); err != nil {
		return fmt.Errorf("seed profiles: %w", err)
	}
	return nil
}

func run(ctx context.Context, cfg config.Server, logger *slog.Logger) error {
	b, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           b.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("profiled listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("profiled shutting down")
		return errors.Join(srv.Shutdown(shutdownCtx), b.close(shutdownCtx))
	})
	return g.Wait()
}
