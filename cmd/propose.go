package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cscx-ai/meetopt/core/engine"
	"github.com/cscx-ai/meetopt/core/model"
	"github.com/cscx-ai/meetopt/infra/logger"
)

var proposeFlags struct {
	customerID      string
	customerName    string
	stakeholderID   string
	stakeholderName string
	timezone        string
	meetingType     string
	purpose         string
	duration        int
	format          string
	slots           int
	calendarUser    string
}

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Generate an optimized meeting request",
	RunE:  runPropose,
}

func init() {
	f := proposeCmd.Flags()
	f.StringVar(&proposeFlags.customerID, "customer", "", "customer ID (required)")
	f.StringVar(&proposeFlags.customerName, "customer-name", "", "customer display name")
	f.StringVar(&proposeFlags.stakeholderID, "stakeholder", "", "stakeholder ID")
	f.StringVar(&proposeFlags.stakeholderName, "stakeholder-name", "", "stakeholder display name")
	f.StringVar(&proposeFlags.timezone, "timezone", "", "IANA timezone for proposed times")
	f.StringVar(&proposeFlags.meetingType, "type", "", "meeting type (intro, check_in, qbr, renewal, escalation)")
	f.StringVar(&proposeFlags.purpose, "purpose", "", "free-form meeting purpose")
	f.IntVar(&proposeFlags.duration, "duration", 0, "duration in minutes (0 uses the learned duration)")
	f.StringVar(&proposeFlags.format, "format", "", "meeting format (video, phone, in_person)")
	f.IntVar(&proposeFlags.slots, "slots", 0, "number of proposed times")
	f.StringVar(&proposeFlags.calendarUser, "calendar-user", "", "calendar account for free/busy checks")
	_ = proposeCmd.MarkFlagRequired("customer")
	rootCmd.AddCommand(proposeCmd)
}

func runPropose(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("propose-command").Errorf("service close: %v", err)
		}
	}()

	req, err := svc.Engine.GenerateOptimizedRequest(context.Background(), engine.GenerateInput{
		CustomerID:      proposeFlags.customerID,
		CustomerName:    proposeFlags.customerName,
		StakeholderID:   proposeFlags.stakeholderID,
		StakeholderName: proposeFlags.stakeholderName,
		Timezone:        proposeFlags.timezone,
		MeetingType:     proposeFlags.meetingType,
		Purpose:         proposeFlags.purpose,
		DurationMinutes: proposeFlags.duration,
		Format:          model.MeetingFormat(proposeFlags.format),
		SlotCount:       proposeFlags.slots,
		CalendarUserID:  proposeFlags.calendarUser,
	})
	if err != nil {
		return fmt.Errorf("generate request: %w", err)
	}
	return printJSON(req)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
