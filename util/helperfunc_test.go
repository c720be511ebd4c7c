package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performJSON(handler gin.HandlerFunc) (*httptest.ResponseRecorder, APIResponse) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	handler(c)

	var resp APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestCallErrorNotFound(t *testing.T) {
	w, resp := performJSON(func(c *gin.Context) {
		CallErrorNotFound(c, APIErrorParams{Msg: "Patient not found", Err: errors.New("record not found")})
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Patient not found", resp.Msg)
	assert.Equal(t, "record not found", resp.Error)
}

func TestCallUserError(t *testing.T) {
	w, resp := performJSON(func(c *gin.Context) {
		CallUserError(c, APIErrorParams{Msg: "Wrong password", Err: errors.New("invalid credentials")})
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Wrong password", resp.Msg)
}

func TestCallValidationError(t *testing.T) {
	w, resp := performJSON(func(c *gin.Context) {
		CallValidationError(c, []string{"first name is required", "last name is required"})
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, []interface{}{"first name is required", "last name is required"}, data["errors"])
}

func TestCallServerError(t *testing.T) {
	w, resp := performJSON(func(c *gin.Context) {
		CallServerError(c, APIErrorParams{Msg: "Database unavailable", Err: errors.New("dial tcp refused")})
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, resp.Success)
}

func TestCallSuccessOK(t *testing.T) {
	w, resp := performJSON(func(c *gin.Context) {
		CallSuccessOK(c, APISuccessParams{Msg: "OK", Data: map[string]interface{}{"total": 3}})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "", resp.Error)

	data, ok := resp.Data.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, float64(3), data["total"])
}
