package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slugblog/internal/db"
)

// HealthCheck pings the store and reports table sizes.
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	ctx := c.Request.Context()
	if err := sqlDB.PingContext(ctx); err != nil {
		a.log.WithError(err).Warn("health check ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	counts := gin.H{}
	for name, model := range map[string]interface{}{
		"posts":    &db.Post{},
		"slugs":    &db.SlugRecord{},
		"archived": &db.ArchiveEntry{},
	} {
		var n int64
		if err := a.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			a.respondServiceError(c, err)
			return
		}
		counts[name] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
		"counts":   counts,
	})
}
