// Package compose assembles the outbound meeting request from the analyzer,
// preference and slot-generation outputs. Pure assembly: no I/O happens here.
package compose

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cscx-ai/meetopt/core/model"
)

// Input carries everything one composition needs.
type Input struct {
	CustomerID      string
	CustomerName    string
	StakeholderID   string
	StakeholderName string
	// MeetingType selects the default subject template: intro, check_in, qbr,
	// renewal, escalation. Unknown types fall back to a generic template.
	MeetingType string
	// Purpose is the caller-supplied subject; it always wins when set.
	Purpose string

	Analysis    model.PatternAnalysis
	Preferences *model.StakeholderPreferences
	Slots       []model.ProposedTime

	DurationMinutes int
	Format          model.MeetingFormat
	// CalendarChecked gates the availability share of the score: unconsulted
	// calendars contribute nothing rather than zero.
	CalendarChecked bool
}

// Composer builds draft MeetingRequests.
type Composer struct {
	now   func() time.Time
	newID func() string
}

// New returns a Composer using the wall clock and random UUIDs.
func New() Composer {
	return Composer{now: time.Now, newID: uuid.NewString}
}

// NewWithClock returns a deterministic Composer, for tests.
func NewWithClock(now func() time.Time, newID func() string) Composer {
	return Composer{now: now, newID: newID}
}

var subjectTemplates = map[string]string{
	"intro":      "Introduction call with %s",
	"check_in":   "Quick check-in with %s",
	"qbr":        "Quarterly business review: %s",
	"renewal":    "Renewal discussion: %s",
	"escalation": "Priority follow-up: %s",
}

// Compose assembles a draft request with subject, body, ranked slots, the
// recommendation list and the optimization score.
func (c Composer) Compose(in Input) model.MeetingRequest {
	subject := c.subject(in)
	return model.MeetingRequest{
		ID:                c.newID(),
		CustomerID:        in.CustomerID,
		StakeholderID:     in.StakeholderID,
		MeetingType:       in.MeetingType,
		Subject:           subject,
		Body:              c.body(in, subject),
		ProposedTimes:     in.Slots,
		DurationMinutes:   in.DurationMinutes,
		Format:            in.Format,
		Analysis:          in.Analysis,
		Recommendations:   Recommendations(in),
		OptimizationScore: Score(in),
		Status:            model.StatusDraft,
		CreatedAt:         c.now(),
	}
}

// subject priority: explicit purpose, then a proven historical subject, then
// the meeting-type template filled with the customer name.
func (c Composer) subject(in Input) string {
	if in.Purpose != "" {
		return in.Purpose
	}
	if len(in.Analysis.SuccessfulSubjects) > 0 {
		return in.Analysis.SuccessfulSubjects[0]
	}
	tmpl, ok := subjectTemplates[in.MeetingType]
	if !ok {
		tmpl = "Meeting with %s"
	}
	return fmt.Sprintf(tmpl, in.CustomerName)
}

func (c Composer) body(in Input, subject string) string {
	name := in.StakeholderName
	if name == "" {
		name = in.CustomerName
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "I'd like to set up time for: %s.\n\n", subject)
	if len(in.Slots) > 0 {
		b.WriteString("Would any of these work for you?\n")
		for _, s := range in.Slots {
			fmt.Fprintf(&b, "  - %s at %s (%d min)\n", s.DisplayDate, s.DisplayTime, s.DurationMinutes)
		}
		b.WriteString("\n")
	}
	b.WriteString("Happy to find another time if none of these fit.\n")
	return b.String()
}
