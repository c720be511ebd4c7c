package model

import (
	"time"
)

// Patient case-management statuses.
const (
	StatusActive       = "active"
	StatusWaitlisted   = "waitlisted"
	StatusDischarged   = "discharged"
	StatusInEvaluation = "in-evaluation"
)

// Patient represents a person receiving support services, tracked
// independently of any session. Optional columns are pointers so an absent
// value is stored as NULL rather than "".
type Patient struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	NationalID *string `json:"national_id" gorm:"size:20;uniqueIndex"`
	FirstName  string  `json:"first_name" gorm:"size:120;not null"`
	LastName   string  `json:"last_name" gorm:"size:120;not null"`

	// Birthdate is kept as a YYYY-MM-DD string by convention; it is not
	// validated for calendar correctness.
	Birthdate *string `json:"birthdate" gorm:"size:20"`

	School           *string `json:"school" gorm:"size:200"`
	Grade            *string `json:"grade" gorm:"size:50"`
	Phone            *string `json:"phone" gorm:"size:50"`
	Guardian         *string `json:"guardian" gorm:"size:200"`
	GuardianRelation *string `json:"guardian_relation" gorm:"size:100"`
	Address          *string `json:"address" gorm:"size:255"`
	Zone             *string `json:"zone" gorm:"size:100"`

	Status           string  `json:"status" gorm:"size:50;default:active"`
	VisitFrequency   *string `json:"visit_frequency" gorm:"size:100"`
	InterventionPlan *string `json:"intervention_plan" gorm:"type:text"`
	DocumentLink     *string `json:"document_link" gorm:"size:512"`
}

// Age derives the patient's age in full years at the given time. The second
// return value is false when no birthdate is recorded or it does not parse
// as YYYY-MM-DD.
func (p *Patient) Age(now time.Time) (int, bool) {
	if p.Birthdate == nil {
		return 0, false
	}
	born, err := time.Parse("2006-01-02", *p.Birthdate)
	if err != nil {
		return 0, false
	}
	years := now.Year() - born.Year()
	if now.YearDay() < born.YearDay() {
		years--
	}
	if years < 0 {
		return 0, false
	}
	return years, true
}
