package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cscx-ai/meetopt/infra/logger"
)

var patternsStakeholder string

var patternsCmd = &cobra.Command{
	Use:   "patterns <customer-id>",
	Short: "Show the learned meeting patterns for a customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatterns,
}

func init() {
	patternsCmd.Flags().StringVar(&patternsStakeholder, "stakeholder", "", "narrow to one stakeholder")
	rootCmd.AddCommand(patternsCmd)
}

func runPatterns(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("patterns-command").Errorf("service close: %v", err)
		}
	}()

	summary, err := svc.Engine.GetMeetingPatterns(context.Background(), args[0], patternsStakeholder)
	if err != nil {
		return fmt.Errorf("get patterns: %w", err)
	}
	return printJSON(summary)
}
