package endpoint

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ariebrainware/registro-clinico/middleware"
	"github.com/ariebrainware/registro-clinico/model"
	"github.com/ariebrainware/registro-clinico/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testAdminPassword = "test-admin-pass"

// endpointTestModels defines the standard set of models migrated for
// endpoint tests.
var endpointTestModels = []interface{}{
	&model.Patient{},
	&model.SessionRecord{},
	&model.Session{},
	&model.AuditLog{},
}

// setupEndpointTestDB opens a fresh in-memory sqlite database with the
// standard models migrated. The DSN is uniquified per test so tests in the
// same process never share state.
func setupEndpointTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:endpoint_%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}
	if err := db.AutoMigrate(endpointTestModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

// setupEndpointTest returns a Gin engine and database connection configured
// for endpoint tests.
func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	t.Setenv("APPENV", "test")
	t.Setenv("ADMIN_PASSWORD", testAdminPassword)
	t.Setenv("JWTSECRET", "test-secret-123")
	util.SetJWTSecret("test-secret-123")

	db := setupEndpointTestDB(t)
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	return r, db
}

// performRequest performs a plain request against the engine.
func performRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// performRequestWithToken performs a request carrying a session token.
func performRequestWithToken(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("session-token", token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// performForm submits an urlencoded form, the way the record forms post.
func performForm(r *gin.Engine, method, path string, data url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// seedPatient inserts a minimal patient row and returns it.
func seedPatient(t *testing.T, db *gorm.DB, firstName, lastName string) model.Patient {
	t.Helper()
	patient := model.Patient{
		FirstName: firstName,
		LastName:  lastName,
		Status:    model.StatusActive,
	}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("failed to seed patient: %v", err)
	}
	return patient
}

// seedSession inserts a session record for the patient and returns it.
func seedSession(t *testing.T, db *gorm.DB, patientID uint, date, professional string) model.SessionRecord {
	t.Helper()
	record := model.SessionRecord{
		PatientID:    patientID,
		Date:         date,
		Professional: professional,
		Mode:         model.ModeInPerson,
		DurationMin:  model.DefaultDurationMin,
		CreatedBy:    "admin",
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("failed to seed session record: %v", err)
	}
	return record
}

// assertRedirect asserts a 302 pointing at the expected location.
func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, location, w.Header().Get("Location"))
}
