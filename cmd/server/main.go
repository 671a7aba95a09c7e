// Command tourbook runs the tour booking API, its notification worker and
// schema migrations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/config"
	"github.com/iliyamo/tour-booking/internal/logging"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "tourbook",
		Short:         "Tour booking API server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(serveCmd(), workerCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger every command uses.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
