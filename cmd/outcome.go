package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cscx-ai/meetopt/core/model"
	"github.com/cscx-ai/meetopt/infra/logger"
)

var outcomeLatency float64

var outcomeCmd = &cobra.Command{
	Use:   "outcome <request-id> <accepted|declined|rescheduled|cancelled|no_response>",
	Short: "Record the outcome of a sent meeting request",
	Args:  cobra.ExactArgs(2),
	RunE:  runOutcome,
}

func init() {
	outcomeCmd.Flags().Float64Var(&outcomeLatency, "latency-hours", -1, "hours between send and response")
	rootCmd.AddCommand(outcomeCmd)
}

func runOutcome(cmd *cobra.Command, args []string) error {
	outcome := model.OutcomeStatus(args[1])
	if !outcome.Valid() {
		return fmt.Errorf("unknown outcome %q", args[1])
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("outcome-command").Errorf("service close: %v", err)
		}
	}()

	var latency *float64
	if outcomeLatency >= 0 {
		latency = &outcomeLatency
	}
	if err := svc.Engine.RecordOutcome(context.Background(), args[0], outcome, latency, nil); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	fmt.Printf("recorded %s for %s\n", outcome, args[0])
	return nil
}
