package endpoint

import (
	"strconv"
	"time"

	"github.com/ariebrainware/registro-clinico/model"
	"github.com/ariebrainware/registro-clinico/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// dashboardSessionCount bounds the recent-session strip on the dashboard.
const dashboardSessionCount = 8

type snapshotCounts struct {
	TotalPatients      int64 `json:"total_patients"`
	ActivePatients     int64 `json:"active_patients"`
	WaitlistedPatients int64 `json:"waitlisted_patients"`
	TotalSessions      int64 `json:"total_sessions"`
}

type monthlyCount struct {
	Month string `json:"month" gorm:"column:ym"`
	Count int64  `json:"count" gorm:"column:c"`
}

// countSnapshot recomputes the point-in-time totals on every request.
func countSnapshot(db *gorm.DB) (snapshotCounts, error) {
	var counts snapshotCounts
	if err := db.Model(&model.Patient{}).Count(&counts.TotalPatients).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&model.Patient{}).Where("status = ?", model.StatusActive).Count(&counts.ActivePatients).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&model.Patient{}).Where("status = ?", model.StatusWaitlisted).Count(&counts.WaitlistedPatients).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&model.SessionRecord{}).Count(&counts.TotalSessions).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

// monthlySessionCounts groups the year's sessions by calendar month,
// ascending. Dates are stored as YYYY-MM-DD strings so substr() works the
// same on MySQL and sqlite.
func monthlySessionCounts(db *gorm.DB, year int) ([]monthlyCount, error) {
	rows := []monthlyCount{}
	err := db.Model(&model.SessionRecord{}).
		Select("substr(date, 1, 7) AS ym, COUNT(*) AS c").
		Where("substr(date, 1, 4) = ?", strconv.Itoa(year)).
		Group("ym").
		Order("ym ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Dashboard serves the snapshot counts plus the most recent sessions.
func Dashboard(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	counts, err := countSnapshot(db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to compute dashboard counts",
			Err: err,
		})
		return
	}

	var lastSessions []model.SessionRecord
	if err := db.Order("date DESC").Limit(dashboardSessionCount).Find(&lastSessions).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to retrieve recent sessions",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Dashboard",
		Data: map[string]interface{}{
			"counts":        counts,
			"last_sessions": lastSessions,
		},
	})
}

// Stats serves the snapshot counts plus the monthly session aggregate for
// the requested year (current calendar year by default).
func Stats(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		if y, err := strconv.Atoi(raw); err == nil {
			year = y
		}
	}

	counts, err := countSnapshot(db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to compute statistics",
			Err: err,
		})
		return
	}

	monthly, err := monthlySessionCounts(db, year)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to compute monthly aggregate",
			Err: err,
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Statistics",
		Data: map[string]interface{}{
			"counts":  counts,
			"monthly": monthly,
			"year":    year,
		},
	})
}
