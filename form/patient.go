// Package form holds the pure validators that turn submitted form field maps
// into typed data bags plus an ordered list of human-readable error messages.
// Callers must branch on the returned ok flag before persisting anything.
package form

import (
	"strings"

	"github.com/ariebrainware/registro-clinico/model"
)

// PatientData is the validated, normalized patient form payload. Optional
// fields are nil when the submitted value was empty after trimming.
type PatientData struct {
	NationalID       *string
	FirstName        string
	LastName         string
	Birthdate        *string
	School           *string
	Grade            *string
	Phone            *string
	Guardian         *string
	GuardianRelation *string
	Address          *string
	Zone             *string
	Status           string
	VisitFrequency   *string
	InterventionPlan *string
	DocumentLink     *string
}

// optional trims the named field and maps an empty result to nil.
func optional(form map[string]string, key string) *string {
	v := strings.TrimSpace(form[key])
	if v == "" {
		return nil
	}
	return &v
}

// ValidatePatient normalizes a submitted patient form. Every field is
// trimmed; only first and last name are validated. Phone numbers, dates and
// links are accepted as opaque strings. ok is true exactly when errs is
// empty.
func ValidatePatient(form map[string]string) (ok bool, data PatientData, errs []string) {
	data = PatientData{
		NationalID:       optional(form, "national_id"),
		FirstName:        strings.TrimSpace(form["first_name"]),
		LastName:         strings.TrimSpace(form["last_name"]),
		Birthdate:        optional(form, "birthdate"),
		School:           optional(form, "school"),
		Grade:            optional(form, "grade"),
		Phone:            optional(form, "phone"),
		Guardian:         optional(form, "guardian"),
		GuardianRelation: optional(form, "guardian_relation"),
		Address:          optional(form, "address"),
		Zone:             optional(form, "zone"),
		Status:           strings.TrimSpace(form["status"]),
		VisitFrequency:   optional(form, "visit_frequency"),
		InterventionPlan: optional(form, "intervention_plan"),
		DocumentLink:     optional(form, "document_link"),
	}
	if data.Status == "" {
		data.Status = model.StatusActive
	}
	if data.FirstName == "" {
		errs = append(errs, "first name is required")
	}
	if data.LastName == "" {
		errs = append(errs, "last name is required")
	}
	return len(errs) == 0, data, errs
}

// ApplyTo overwrites every validated field on the patient. Assignment is
// exhaustive so a renamed field breaks the build instead of silently
// no-oping. ID and CreatedAt are never touched.
func (d PatientData) ApplyTo(p *model.Patient) {
	p.NationalID = d.NationalID
	p.FirstName = d.FirstName
	p.LastName = d.LastName
	p.Birthdate = d.Birthdate
	p.School = d.School
	p.Grade = d.Grade
	p.Phone = d.Phone
	p.Guardian = d.Guardian
	p.GuardianRelation = d.GuardianRelation
	p.Address = d.Address
	p.Zone = d.Zone
	p.Status = d.Status
	p.VisitFrequency = d.VisitFrequency
	p.InterventionPlan = d.InterventionPlan
	p.DocumentLink = d.DocumentLink
}
