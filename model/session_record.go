package model

import (
	"time"
)

// Session delivery modes.
const (
	ModeInPerson       = "in-person"
	ModeTeleconsulting = "teleconsulting"
	ModeHomeVisit      = "home-visit"
)

// DefaultDurationMin is substituted when a session form omits the duration.
const DefaultDurationMin = 50

// SessionRecord documents one intervention/visit belonging to exactly one
// patient. Date is stored as a YYYY-MM-DD string so month grouping works the
// same on MySQL and sqlite.
type SessionRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	PatientID uint `json:"patient_id" gorm:"not null;index"`

	Date         string `json:"date" gorm:"size:10;not null;index"`
	Professional string `json:"professional" gorm:"size:120;not null"`
	Mode         string `json:"mode" gorm:"size:50;default:in-person"`
	DurationMin  int    `json:"duration_min" gorm:"default:50"`

	Reason        *string `json:"reason" gorm:"type:text"`
	Focus         *string `json:"focus" gorm:"type:text"`
	Interventions *string `json:"interventions" gorm:"type:text"`
	Outcomes      *string `json:"outcomes" gorm:"type:text"`
	RiskLevel     *string `json:"risk_level" gorm:"size:50"`
	Referrals     *string `json:"referrals" gorm:"type:text"`
	NextSteps     *string `json:"next_steps" gorm:"type:text"`

	CreatedBy    string  `json:"created_by" gorm:"size:120"`
	DocumentLink *string `json:"document_link" gorm:"size:512"`
}
