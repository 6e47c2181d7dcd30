package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parsePostIDParam(c *gin.Context, key string) (db.PostID, error) {
	id, err := db.ParsePostID(strings.TrimSpace(c.Param(key)))
	if err != nil {
		return db.PostID{}, fmt.Errorf("invalid %s", key)
	}
	return id, nil
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func (a *API) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	default:
		c.Error(err)
		a.log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
