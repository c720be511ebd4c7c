package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is a server-side authenticated session. Logout soft-deletes the
// row, so validation queries must filter on deleted_at IS NULL.
type Session struct {
	gorm.Model
	SessionToken string    `json:"session_token" gorm:"size:512;index"`
	Actor        string    `json:"actor" gorm:"size:120"`
	IP           string    `json:"ip" gorm:"size:45"`
	UserAgent    string    `json:"user_agent" gorm:"size:512"`
	ExpiresAt    time.Time `json:"expires_at"`
}
