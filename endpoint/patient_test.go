package endpoint

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/ariebrainware/registro-clinico/model"
	"github.com/stretchr/testify/assert"
)

func TestSavePatientCreatesWithDefaultedStatus(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.POST("/patients/new", SavePatient)

	w := performForm(r, "POST", "/patients/new", url.Values{
		"first_name": {"  María "},
		"last_name":  {"González"},
	})

	var patient model.Patient
	assert.NoError(t, db.First(&patient).Error)
	assertRedirect(t, w, fmt.Sprintf("/patients/%d", patient.ID))
	assert.Equal(t, "María", patient.FirstName)
	assert.Equal(t, "González", patient.LastName)
	assert.Equal(t, model.StatusActive, patient.Status)
	assert.Nil(t, patient.School)
}

func TestSavePatientMissingNamesPersistsNothing(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.POST("/patients/new", SavePatient)

	w := performForm(r, "POST", "/patients/new", url.Values{
		"first_name": {"   "},
		"last_name":  {""},
		"school":     {"Liceo A"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	errs := data["errors"].([]interface{})
	assert.Equal(t, []interface{}{"first name is required", "last name is required"}, errs)

	var count int64
	db.Model(&model.Patient{}).Count(&count)
	assert.Zero(t, count)
}

func TestSavePatientUpdateOverwritesFields(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.POST("/patients/:id/edit", SavePatient)

	patient := seedPatient(t, db, "Ana", "Rojas")
	school := "Colegio Sur"
	patient.School = &school
	db.Save(&patient)

	w := performForm(r, "POST", fmt.Sprintf("/patients/%d/edit", patient.ID), url.Values{
		"first_name": {"Ana"},
		"last_name":  {"Rojas Pérez"},
		"status":     {model.StatusWaitlisted},
	})
	assertRedirect(t, w, fmt.Sprintf("/patients/%d", patient.ID))

	var updated model.Patient
	db.First(&updated, patient.ID)
	assert.Equal(t, "Rojas Pérez", updated.LastName)
	assert.Equal(t, model.StatusWaitlisted, updated.Status)
	// Fields absent from the form are overwritten to absent.
	assert.Nil(t, updated.School)
}

func TestSavePatientResubmitIsIdempotent(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.POST("/patients/:id/edit", SavePatient)

	patient := seedPatient(t, db, "Pedro", "Soto")
	values := url.Values{
		"first_name": {"Pedro"},
		"last_name":  {"Soto"},
		"status":     {model.StatusActive},
		"phone":      {"+56 9 1234 5678"},
	}

	performForm(r, "POST", fmt.Sprintf("/patients/%d/edit", patient.ID), values)
	var first model.Patient
	db.First(&first, patient.ID)

	performForm(r, "POST", fmt.Sprintf("/patients/%d/edit", patient.ID), values)
	var second model.Patient
	db.First(&second, patient.ID)

	assert.Equal(t, first, second)
}

func TestSavePatientRejectsDuplicateNationalID(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.POST("/patients/new", SavePatient)

	performForm(r, "POST", "/patients/new", url.Values{
		"first_name":  {"Uno"},
		"last_name":   {"Díaz"},
		"national_id": {"12.345.678-9"},
	})
	w := performForm(r, "POST", "/patients/new", url.Values{
		"first_name":  {"Dos"},
		"last_name":   {"Mora"},
		"national_id": {"12.345.678-9"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var count int64
	db.Model(&model.Patient{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListPatientsSearchIsCaseInsensitiveSubstring(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.GET("/patients", ListPatients)

	patient := seedPatient(t, db, "María", "González")
	nationalID := "12.345.678-9"
	patient.NationalID = &nationalID
	db.Save(&patient)
	seedPatient(t, db, "Pedro", "Soto")

	for _, q := range []string{"marí", "GONZ", "12.345.678-9"} {
		w := performRequest(r, "GET", "/patients?q="+url.QueryEscape(q))
		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, float64(1), data["total"], "query %q", q)
	}
}

func TestListPatientsStatusFilter(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.GET("/patients", ListPatients)

	seedPatient(t, db, "Ana", "Rojas")
	waitlisted := seedPatient(t, db, "Luz", "Campos")
	waitlisted.Status = model.StatusWaitlisted
	db.Save(&waitlisted)

	w := performRequest(r, "GET", "/patients?status="+model.StatusWaitlisted)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

func TestPatientDetailNotFound(t *testing.T) {
	r, _ := setupEndpointTest(t)
	r.GET("/patients/:id", PatientDetail)

	w := performRequest(r, "GET", "/patients/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatientDetailIncludesSessionHistoryMostRecentFirst(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.GET("/patients/:id", PatientDetail)

	patient := seedPatient(t, db, "Ana", "Rojas")
	seedSession(t, db, patient.ID, "2024-01-05", "Psicóloga")
	seedSession(t, db, patient.ID, "2024-03-10", "Psicóloga")

	w := performRequest(r, "GET", fmt.Sprintf("/patients/%d", patient.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	sessions := data["sessions"].([]interface{})
	assert.Len(t, sessions, 2)
	first := sessions[0].(map[string]interface{})
	assert.Equal(t, "2024-03-10", first["date"])
}

func TestPatientDetailDerivedAge(t *testing.T) {
	r, db := setupEndpointTest(t)
	r.GET("/patients/:id", PatientDetail)

	patient := seedPatient(t, db, "Ana", "Rojas")
	birthdate := "2010-01-15"
	patient.Birthdate = &birthdate
	db.Save(&patient)

	w := performRequest(r, "GET", fmt.Sprintf("/patients/%d", patient.ID))
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	_, hasAge := data["age"]
	assert.True(t, hasAge)
}
