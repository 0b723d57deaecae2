// Package cmd defines the CLI surface: a long-running serve mode plus
// one-shot commands for proposing meetings, inspecting patterns and
// recording outcomes.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cscx-ai/meetopt/app"
	"github.com/cscx-ai/meetopt/config"
	"github.com/cscx-ai/meetopt/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "meetopt",
	Short: "Meeting scheduling optimization service",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}

// newService builds the service from the configured path, falling back to
// built-in defaults when no configuration file exists.
func newService() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return app.New(config.Default())
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg)
}
