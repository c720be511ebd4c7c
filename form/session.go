package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/ariebrainware/registro-clinico/model"
)

// SessionData is the validated, normalized session form payload. Date is ""
// when the submitted value did not parse.
type SessionData struct {
	Date          string
	Professional  string
	Mode          string
	DurationMin   int
	Reason        *string
	Focus         *string
	Interventions *string
	Outcomes      *string
	RiskLevel     *string
	Referrals     *string
	NextSteps     *string
	DocumentLink  *string
}

// ValidateSession normalizes a submitted session form. The date must match
// YYYY-MM-DD exactly. An empty duration defaults to 50; a non-integer or
// non-positive duration is rejected rather than left to fault downstream.
// ok is true exactly when errs is empty and the date parsed; handlers gate
// persistence on ok only.
func ValidateSession(form map[string]string) (ok bool, data SessionData, errs []string) {
	rawDate := strings.TrimSpace(form["date"])
	if _, err := time.Parse("2006-01-02", rawDate); err != nil {
		errs = append(errs, "invalid date (use YYYY-MM-DD format)")
	} else {
		data.Date = rawDate
	}

	data.Professional = strings.TrimSpace(form["professional"])
	if data.Professional == "" {
		errs = append(errs, "professional is required")
	}

	data.Mode = strings.TrimSpace(form["mode"])
	if data.Mode == "" {
		data.Mode = model.ModeInPerson
	}

	rawDuration := strings.TrimSpace(form["duration_min"])
	if rawDuration == "" {
		data.DurationMin = model.DefaultDurationMin
	} else if n, err := strconv.Atoi(rawDuration); err != nil || n < 1 {
		errs = append(errs, "duration must be a positive integer")
	} else {
		data.DurationMin = n
	}

	data.Reason = optional(form, "reason")
	data.Focus = optional(form, "focus")
	data.Interventions = optional(form, "interventions")
	data.Outcomes = optional(form, "outcomes")
	data.RiskLevel = optional(form, "risk_level")
	data.Referrals = optional(form, "referrals")
	data.NextSteps = optional(form, "next_steps")
	data.DocumentLink = optional(form, "document_link")

	return len(errs) == 0 && data.Date != "", data, errs
}

// ApplyTo overwrites every validated field on the record. PatientID,
// CreatedBy, ID and CreatedAt are owned by the route layer and never touched
// here.
func (d SessionData) ApplyTo(r *model.SessionRecord) {
	r.Date = d.Date
	r.Professional = d.Professional
	r.Mode = d.Mode
	r.DurationMin = d.DurationMin
	r.Reason = d.Reason
	r.Focus = d.Focus
	r.Interventions = d.Interventions
	r.Outcomes = d.Outcomes
	r.RiskLevel = d.RiskLevel
	r.Referrals = d.Referrals
	r.NextSteps = d.NextSteps
	r.DocumentLink = d.DocumentLink
}
