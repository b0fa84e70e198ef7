package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LeventeLantos/sms-dispatch/internal/apperr"
)

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, err error) {
	writeJSON(c, apperr.Status(err), gin.H{"success": false, "error": err.Error()})
}

func writeFailure(c *gin.Context, status int, msg string) {
	writeJSON(c, status, gin.H{"success": false, "error": msg})
}

// parseInt falls back to def for missing or malformed values.
func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeFailure(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// activeOnly reads ?active=, which defaults to true.
func activeOnly(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("active", "true"))
	if err != nil {
		return true
	}
	return v
}
