// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/ariebrainware/registro-clinico/config"
	"github.com/ariebrainware/registro-clinico/endpoint"
	"github.com/ariebrainware/registro-clinico/middleware"
	"github.com/ariebrainware/registro-clinico/model"
	"github.com/ariebrainware/registro-clinico/util"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load the configuration
	cfg := config.LoadConfig()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Patient{},
		&model.SessionRecord{},
		&model.Session{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("Error migrating schema: %v", err)
	}

	util.SetJWTSecret(cfg.JWTSecret)
	util.SetAuditLoggerDB(db)

	// Redis mirror for sessions and login rate limiting (best-effort).
	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable, sessions fall back to the database: %v", err)
	}

	// Optional GeoIP annotation for audit events.
	if err := util.InitGeoIP(os.Getenv("GEOIP_DB")); err != nil {
		log.Printf("GeoIP disabled: %v", err)
	}
	defer util.CloseGeoIP()

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	registerRoutes(router)

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func registerRoutes(router *gin.Engine) {
	router.GET("/login", endpoint.LoginForm)
	router.POST("/login", middleware.RateLimiter(middleware.RateLimitConfig{}), endpoint.Login)
	router.GET("/logout", endpoint.Logout)

	protected := router.Group("/", middleware.RequireSession())

	protected.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	protected.GET("/dashboard", endpoint.Dashboard)

	protected.GET("/patients", endpoint.ListPatients)
	protected.GET("/patients/new", endpoint.PatientForm)
	protected.POST("/patients/new", endpoint.SavePatient)
	protected.GET("/patients/:id", endpoint.PatientDetail)
	protected.GET("/patients/:id/edit", endpoint.PatientForm)
	protected.POST("/patients/:id/edit", endpoint.SavePatient)

	protected.GET("/sessions", endpoint.ListSessions)
	protected.GET("/patients/:id/sessions/new", endpoint.NewSessionForm)
	protected.POST("/patients/:id/sessions/new", endpoint.CreateSession)
	protected.GET("/sessions/:id/edit", endpoint.EditSessionForm)
	protected.POST("/sessions/:id/edit", endpoint.UpdateSession)

	protected.GET("/stats", endpoint.Stats)

	protected.GET("/export/patients.csv", endpoint.ExportPatientsCSV)
	protected.GET("/export/sessions.csv", endpoint.ExportSessionsCSV)
	protected.GET("/export/patients.xlsx", endpoint.ExportPatientsXLSX)
	protected.GET("/export/sessions.xlsx", endpoint.ExportSessionsXLSX)
}
