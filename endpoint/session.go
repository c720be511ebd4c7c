package endpoint

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ariebrainware/registro-clinico/form"
	"github.com/ariebrainware/registro-clinico/model"
	"github.com/ariebrainware/registro-clinico/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// sessionListCap bounds the session list view.
const sessionListCap = 200

// fetchSessions applies the free-text filter over professional and focus,
// most recent session date first, capped at sessionListCap rows.
func fetchSessions(db *gorm.DB, keyword string) ([]model.SessionRecord, error) {
	query := db.Order("date DESC").Limit(sessionListCap)
	if keyword != "" {
		kw := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(professional) LIKE ? OR LOWER(focus) LIKE ?", kw, kw)
	}

	var sessions []model.SessionRecord
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListSessions serves the session list with optional search.
func ListSessions(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	keyword := strings.TrimSpace(c.Query("q"))
	sessions, err := fetchSessions(db, keyword)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve sessions",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Sessions retrieved",
		Data: map[string]interface{}{
			"total":    len(sessions),
			"q":        keyword,
			"sessions": sessions,
		},
	})
}

// resolveSessionContext loads the session record being edited (when
// sessionID is set) and the owning patient, resolved from the explicit
// patient path parameter or from the record's own foreign key. A nil patient
// means no patient could be resolved and the caller must bounce to the
// patient list.
func resolveSessionContext(db *gorm.DB, patientID, sessionID uint) (*model.SessionRecord, *model.Patient) {
	var record *model.SessionRecord
	if sessionID != 0 {
		var found model.SessionRecord
		if err := db.First(&found, sessionID).Error; err == nil {
			record = &found
			if patientID == 0 {
				patientID = found.PatientID
			}
		}
	}

	if patientID == 0 {
		return record, nil
	}

	var patient model.Patient
	if err := db.First(&patient, patientID).Error; err != nil {
		return record, nil
	}
	return record, &patient
}

// sessionForm serves the create/edit form state for a session record.
func sessionForm(c *gin.Context, patientParam, sessionParam string) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patientID, err := parseID(patientParam)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid patient ID", Err: err})
		return
	}
	sessionID, err := parseID(sessionParam)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid session ID", Err: err})
		return
	}

	record, patient := resolveSessionContext(db, patientID, sessionID)
	if patient == nil {
		// No patient to attach the session to; back to the list.
		c.Redirect(http.StatusFound, "/patients")
		return
	}

	data := map[string]interface{}{"patient": patient}
	if record != nil {
		data["record"] = record
	} else {
		data["record"] = model.SessionRecord{}
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Session form",
		Data: data,
	})
}

// saveSession is the single create-or-update handler for session records.
// Creation requires an existing patient; CreatedBy is stamped from the
// authenticated actor when the form does not supply it.
func saveSession(c *gin.Context, patientParam, sessionParam string) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	patientID, err := parseID(patientParam)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid patient ID", Err: err})
		return
	}
	sessionID, err := parseID(sessionParam)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid session ID", Err: err})
		return
	}

	record, patient := resolveSessionContext(db, patientID, sessionID)
	if patient == nil {
		c.Redirect(http.StatusFound, "/patients")
		return
	}

	fields := postFormMap(c)
	valid, data, errs := form.ValidateSession(fields)
	if !valid {
		util.CallValidationError(c, errs)
		return
	}

	updating := record != nil
	if !updating {
		createdBy := strings.TrimSpace(fields["created_by"])
		if createdBy == "" {
			createdBy = actorOrDefault(c)
		}
		record = &model.SessionRecord{
			PatientID: patient.ID,
			CreatedBy: createdBy,
		}
	}

	data.ApplyTo(record)
	if err := db.Save(record).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to save session record",
			Err: err,
		})
		return
	}

	if updating {
		util.LogRecordUpdated(actorOrDefault(c), "session_record", record.ID)
	} else {
		util.LogRecordCreated(actorOrDefault(c), "session_record", record.ID)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/patients/%d", patient.ID))
}

// NewSessionForm serves GET /patients/:id/sessions/new.
func NewSessionForm(c *gin.Context) {
	sessionForm(c, c.Param("id"), "")
}

// EditSessionForm serves GET /sessions/:id/edit.
func EditSessionForm(c *gin.Context) {
	sessionForm(c, "", c.Param("id"))
}

// CreateSession serves POST /patients/:id/sessions/new.
func CreateSession(c *gin.Context) {
	saveSession(c, c.Param("id"), "")
}

// UpdateSession serves POST /sessions/:id/edit.
func UpdateSession(c *gin.Context) {
	saveSession(c, "", c.Param("id"))
}
