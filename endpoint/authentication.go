package endpoint

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/registro-clinico/config"
	"github.com/ariebrainware/registro-clinico/middleware"
	"github.com/ariebrainware/registro-clinico/model"
	"github.com/ariebrainware/registro-clinico/util"
	"github.com/gin-gonic/gin"
)

// sessionTTL bounds how long a login stays valid.
const sessionTTL = time.Hour

type loginRequest struct {
	Password string `json:"password" form:"password"`
	Actor    string `json:"actor" form:"actor"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Actor     string    `json:"actor"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginForm answers the login view for unauthenticated GETs.
func LoginForm(c *gin.Context) {
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login required",
		Data: map[string]interface{}{"fields": []string{"password"}},
	})
}

// Login checks the submitted password against the shared admin secret and,
// on success, issues a session token, persists the session server-side,
// mirrors it into Redis and sets the session cookie.
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request payload",
			Err: err,
		})
		return
	}

	cfg := config.LoadConfig()
	if cfg.AdminPassword == "" {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Admin password not configured",
			Err: fmt.Errorf("ADMIN_PASSWORD is empty"),
		})
		return
	}

	ip := c.ClientIP()
	agent := c.Request.UserAgent()

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(cfg.AdminPassword)) != 1 {
		util.LogLoginFailure(ip, agent, "invalid password")
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid password",
			Err: fmt.Errorf("invalid password"),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	actor := req.Actor
	if actor == "" {
		actor = middleware.DefaultActor
	}

	expiresAt := time.Now().Add(sessionTTL)
	token, err := util.NewSessionToken(actor, expiresAt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Could not generate session token",
			Err: err,
		})
		return
	}

	session := model.Session{
		SessionToken: token,
		Actor:        actor,
		IP:           ip,
		UserAgent:    agent,
		ExpiresAt:    expiresAt,
	}
	if err := db.Create(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Failed to record session",
			Err: err,
		})
		return
	}

	// Mirror into Redis and the local cache (best-effort).
	if rdb := config.GetRedisClient(); rdb != nil {
		_ = rdb.Set(context.Background(), sessionRedisKey(token), actor, time.Until(expiresAt)).Err()
	}
	util.SessionCacheSet(token, actor, time.Until(expiresAt))

	c.SetCookie(middleware.SessionCookieName, token, int(sessionTTL.Seconds()), "/", "", false, true)

	util.LogLoginSuccess(actor, ip, agent)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login successful",
		Data: loginResponse{Token: token, Actor: actor, ExpiresAt: expiresAt},
	})
}

// Logout removes the server-side session, drops cache and Redis mirrors,
// clears the cookie and sends the caller back to the login view.
func Logout(c *gin.Context) {
	token := middleware.SessionTokenFrom(c)
	if token != "" {
		if db := middleware.GetDB(c); db != nil {
			var session model.Session
			if err := db.Where("session_token = ?", token).First(&session).Error; err == nil {
				db.Delete(&session)
				util.LogLogout(session.Actor, c.ClientIP(), c.Request.UserAgent())
			}
		}
		util.SessionCacheDelete(token)
		if rdb := config.GetRedisClient(); rdb != nil {
			_ = rdb.Del(context.Background(), sessionRedisKey(token)).Err()
		}
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}

func sessionRedisKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
