package endpoint

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ariebrainware/registro-clinico/form"
	"github.com/ariebrainware/registro-clinico/model"
	"github.com/ariebrainware/registro-clinico/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type patientListQuery struct {
	Keyword string
	Status  string
}

func parsePatientListQuery(c *gin.Context) patientListQuery {
	return patientListQuery{
		Keyword: strings.TrimSpace(c.Query("q")),
		Status:  strings.TrimSpace(c.Query("status")),
	}
}

// fetchPatients applies the free-text and status filters. The keyword is a
// case-insensitive substring match over first name, last name and national
// id; results come back most recently created first, uncapped.
func fetchPatients(db *gorm.DB, q patientListQuery) ([]model.Patient, error) {
	query := db.Order("created_at DESC")
	if q.Keyword != "" {
		kw := "%" + strings.ToLower(q.Keyword) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(national_id) LIKE ?",
			kw, kw, kw,
		)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var patients []model.Patient
	if err := query.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// ListPatients serves the patient list with optional search and status
// filter.
func ListPatients(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	q := parsePatientListQuery(c)
	patients, err := fetchPatients(db, q)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve patients",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Patients retrieved",
		Data: map[string]interface{}{
			"total":    len(patients),
			"q":        q.Keyword,
			"status":   q.Status,
			"patients": patients,
		},
	})
}

// PatientForm serves the create/edit form state: the existing record when an
// id path parameter is present, a zero record otherwise.
func PatientForm(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid patient ID", Err: err})
		return
	}

	patient := model.Patient{}
	if id != 0 {
		if patient, ok = findPatientOrRespond(c, db, id); !ok {
			return
		}
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patient form",
		Data: map[string]interface{}{"patient": patient},
	})
}

// SavePatient is the single create-or-update handler behind POST
// /patients/new and POST /patients/:id/edit. Validation failure answers the
// accumulated messages and persists nothing; success commits and redirects
// to the detail view.
func SavePatient(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid patient ID", Err: err})
		return
	}

	var patient model.Patient
	updating := id != 0
	if updating {
		if patient, ok = findPatientOrRespond(c, db, id); !ok {
			return
		}
	}

	valid, data, errs := form.ValidatePatient(postFormMap(c))
	if !valid {
		util.CallValidationError(c, errs)
		return
	}

	if available, err := nationalIDAvailable(db, data.NationalID, patient.ID); err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to check existing patient",
			Err: err,
		})
		return
	} else if !available {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "National ID already registered",
			Err: fmt.Errorf("national id already registered"),
		})
		return
	}

	data.ApplyTo(&patient)
	if err := db.Save(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to save patient",
			Err: err,
		})
		return
	}

	if updating {
		util.LogRecordUpdated(actorOrDefault(c), "patient", patient.ID)
	} else {
		util.LogRecordCreated(actorOrDefault(c), "patient", patient.ID)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/patients/%d", patient.ID))
}

// nationalIDAvailable reports whether the national id is unused or already
// belongs to the patient being updated.
func nationalIDAvailable(db *gorm.DB, nationalID *string, selfID uint) (bool, error) {
	if nationalID == nil {
		return true, nil
	}
	var existing model.Patient
	err := db.Where("national_id = ?", *nationalID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID == selfID, nil
}

// PatientDetail serves one patient plus their full session history, most
// recent session first.
func PatientDetail(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid patient ID",
			Err: fmt.Errorf("patient ID is required"),
		})
		return
	}

	patient, ok := findPatientOrRespond(c, db, id)
	if !ok {
		return
	}

	var sessions []model.SessionRecord
	if err := db.Where("patient_id = ?", patient.ID).Order("date DESC").Find(&sessions).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve session history",
			Err: err,
		})
		return
	}

	data := map[string]interface{}{
		"patient":  patient,
		"sessions": sessions,
	}
	if age, known := patient.Age(time.Now()); known {
		data["age"] = age
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patient retrieved",
		Data: data,
	})
}
