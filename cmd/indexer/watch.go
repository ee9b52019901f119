package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"transferScope/internal/config"
	"transferScope/internal/metrics"
	"transferScope/internal/model"
	"transferScope/internal/storage"
	"transferScope/internal/subscriber"
)

var errLimitReached = errors.New("event limit reached")

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sink, err := storage.NewJsonlSink(cfg.Out, cfg.Errors)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("close sink", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watch start",
		zap.String("ws", cfg.WSURL),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.Uint64("limit", cfg.Limit),
	)

	g, gctx := errgroup.WithContext(ctx)
	watchCtx, cancelWatch := context.WithCancel(gctx)
	defer cancelWatch()

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(watchCtx, cfg.MetricsAddr, logger)
		})
	}

	var written uint64
	g.Go(func() error {
		defer cancelWatch()
		return watch(watchCtx, cfg, sink, logger, &written)
	})

	err = g.Wait()
	logger.Info("watch complete", zap.Uint64("events", written))
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func watch(ctx context.Context, cfg config.WatchConfig, sink storage.Sink, logger *zap.Logger, written *uint64) error {
	sub := subscriber.New(subscriber.Config{
		URL: cfg.WSURL,
		OnDrop: func(rec model.DecodeError) {
			if err := sink.PutDecodeError(rec); err != nil {
				logger.Warn("write decode error", zap.Error(err))
			}
		},
	}, logger)

	err := sub.Run(ctx, func(ctx context.Context, event model.TransferEvent) error {
		if err := sink.PutTransfer(event); err != nil {
			return err
		}
		*written++
		if cfg.Limit > 0 && *written >= cfg.Limit {
			return errLimitReached
		}
		return nil
	})
	if errors.Is(err, errLimitReached) {
		return nil
	}
	return err
}
