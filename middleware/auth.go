package middleware

import (
	"net/http"
	"time"

	"github.com/ariebrainware/registro-clinico/model"
	"github.com/ariebrainware/registro-clinico/util"
	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName is the browser-side carrier of the session token;
	// API clients may send the same value in the session-token header.
	SessionCookieName = "session_token"

	actorContextKey = "actor"

	// DefaultActor names the operator when a session carries no actor.
	DefaultActor = "admin"
)

// SessionTokenFrom extracts the session token from the request, header
// first, cookie second.
func SessionTokenFrom(c *gin.Context) string {
	if token := c.GetHeader("session-token"); token != "" {
		return token
	}
	if token, err := c.Cookie(SessionCookieName); err == nil {
		return token
	}
	return ""
}

// RequireSession gates every protected route. An unknown, expired or absent
// token redirects to /login without performing the requested operation.
// Valid tokens put the acting operator's name into the request context.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionTokenFrom(c)
		if token == "" {
			redirectToLogin(c, "missing session token")
			return
		}

		if actor, ok := util.SessionCacheGet(token); ok {
			c.Set(actorContextKey, actor)
			c.Next()
			return
		}

		db := GetDB(c)
		if db == nil {
			redirectToLogin(c, "database connection not available")
			return
		}

		var session model.Session
		err := db.Where("session_token = ? AND expires_at > ? AND deleted_at IS NULL", token, time.Now()).
			First(&session).Error
		if err != nil {
			redirectToLogin(c, "session not found or expired")
			return
		}

		util.SessionCacheSet(token, session.Actor, time.Until(session.ExpiresAt))
		c.Set(actorContextKey, session.Actor)
		c.Next()
	}
}

// GetActor returns the authenticated operator's name, or "" when the
// handler runs outside RequireSession.
func GetActor(c *gin.Context) string {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return ""
	}
	actor, _ := v.(string)
	return actor
}

func redirectToLogin(c *gin.Context, reason string) {
	util.LogUnauthorizedAccess(c.ClientIP(), c.Request.URL.Path, reason)
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}
