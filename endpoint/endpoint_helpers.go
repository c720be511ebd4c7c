package endpoint

import (
	"fmt"
	"strconv"

	"github.com/ariebrainware/registro-clinico/middleware"
	"github.com/ariebrainware/registro-clinico/model"
	"github.com/ariebrainware/registro-clinico/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// getDBOrRespond fetches the request-scoped DB handle, answering a server
// error when the database middleware did not run.
func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Database connection not available",
			Err: fmt.Errorf("db is nil"),
		})
		return nil, false
	}
	return db, true
}

// postFormMap flattens the submitted form into the field map the validators
// consume. Only the first value of repeated fields is kept.
func postFormMap(c *gin.Context) map[string]string {
	_ = c.Request.ParseForm()
	fields := make(map[string]string, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}

// parseID parses a numeric path parameter. Returns 0 for an empty value.
func parseID(raw string) (uint, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// findPatientOrRespond loads a patient by id, answering 404 when absent.
func findPatientOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.Patient, bool) {
	var patient model.Patient
	if err := db.First(&patient, id).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{
			Msg: "Patient not found",
			Err: err,
		})
		return model.Patient{}, false
	}
	return patient, true
}

// actorOrDefault names the acting operator for provenance stamping.
func actorOrDefault(c *gin.Context) string {
	if actor := middleware.GetActor(c); actor != "" {
		return actor
	}
	return middleware.DefaultActor
}

// strOrEmpty renders an optional column as a cell value.
func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
