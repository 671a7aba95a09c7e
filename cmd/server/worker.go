package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/queue"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume booking notifications and append them to the notification log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("notification worker started",
				zap.String("queue", cfg.Queue.QueueName),
				zap.String("log_dir", cfg.Queue.LogDir))
			c := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.QueueName, queue.FileSink(cfg.Queue.LogDir, log), log)
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("notification worker stopped")
			return nil
		},
	}
}
