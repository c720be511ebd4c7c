package endpoint

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/ariebrainware/registro-clinico/model"
	"github.com/ariebrainware/registro-clinico/util"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var patientExportHeader = []string{
	"id", "national_id", "first_name", "last_name", "birthdate", "grade",
	"school", "phone", "guardian", "guardian_relation", "address", "zone",
	"status", "visit_frequency", "intervention_plan", "document_link",
	"created_at",
}

var sessionExportHeader = []string{
	"id", "patient_id", "date", "professional", "mode", "duration_min",
	"reason", "focus", "interventions", "outcomes", "risk_level",
	"referrals", "next_steps", "created_by", "document_link", "created_at",
}

func patientExportRow(p model.Patient) []string {
	return []string{
		strconv.FormatUint(uint64(p.ID), 10),
		strOrEmpty(p.NationalID),
		p.FirstName,
		p.LastName,
		strOrEmpty(p.Birthdate),
		strOrEmpty(p.Grade),
		strOrEmpty(p.School),
		strOrEmpty(p.Phone),
		strOrEmpty(p.Guardian),
		strOrEmpty(p.GuardianRelation),
		strOrEmpty(p.Address),
		strOrEmpty(p.Zone),
		p.Status,
		strOrEmpty(p.VisitFrequency),
		strOrEmpty(p.InterventionPlan),
		strOrEmpty(p.DocumentLink),
		p.CreatedAt.Format(time.RFC3339),
	}
}

func sessionExportRow(s model.SessionRecord) []string {
	return []string{
		strconv.FormatUint(uint64(s.ID), 10),
		strconv.FormatUint(uint64(s.PatientID), 10),
		s.Date,
		s.Professional,
		s.Mode,
		strconv.Itoa(s.DurationMin),
		strOrEmpty(s.Reason),
		strOrEmpty(s.Focus),
		strOrEmpty(s.Interventions),
		strOrEmpty(s.Outcomes),
		strOrEmpty(s.RiskLevel),
		strOrEmpty(s.Referrals),
		strOrEmpty(s.NextSteps),
		s.CreatedBy,
		strOrEmpty(s.DocumentLink),
		s.CreatedAt.Format(time.RFC3339),
	}
}

func fetchAllPatients(db *gorm.DB) ([]model.Patient, error) {
	var patients []model.Patient
	err := db.Order("id ASC").Find(&patients).Error
	return patients, err
}

func fetchAllSessions(db *gorm.DB) ([]model.SessionRecord, error) {
	var sessions []model.SessionRecord
	err := db.Order("id ASC").Find(&sessions).Error
	return sessions, err
}

// writeCSV streams header + rows as a downloadable attachment. Full-table
// scan, acceptable at a small clinic's caseload.
func writeCSV(c *gin.Context, filename string, header []string, rows [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(200)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(header)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
}

// writeXLSX renders the same table as a spreadsheet.
func writeXLSX(c *gin.Context, filename string, header []string, rows [][]string) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	_ = f.SetSheetRow(sheet, "A1", &cells)

	for ri, row := range rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", ri+2), &cells)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(200)
	_ = f.Write(c.Writer)
}

// ExportPatientsCSV serves GET /export/patients.csv.
func ExportPatientsCSV(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	patients, err := fetchAllPatients(db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to export patients", Err: err})
		return
	}
	rows := make([][]string, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, patientExportRow(p))
	}
	writeCSV(c, "patients.csv", patientExportHeader, rows)
}

// ExportSessionsCSV serves GET /export/sessions.csv.
func ExportSessionsCSV(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	sessions, err := fetchAllSessions(db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to export sessions", Err: err})
		return
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, sessionExportRow(s))
	}
	writeCSV(c, "sessions.csv", sessionExportHeader, rows)
}

// ExportPatientsXLSX serves GET /export/patients.xlsx.
func ExportPatientsXLSX(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	patients, err := fetchAllPatients(db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to export patients", Err: err})
		return
	}
	rows := make([][]string, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, patientExportRow(p))
	}
	writeXLSX(c, "patients.xlsx", patientExportHeader, rows)
}

// ExportSessionsXLSX serves GET /export/sessions.xlsx.
func ExportSessionsXLSX(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	sessions, err := fetchAllSessions(db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to export sessions", Err: err})
		return
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, sessionExportRow(s))
	}
	writeXLSX(c, "sessions.xlsx", sessionExportHeader, rows)
}
