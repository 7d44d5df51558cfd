package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gino-rizzo/ginos-pizza-api/services"
)

// RunArchive handles POST /api/v1/archive/run - a manual archival sweep.
// The same job also runs on the daily schedule; this endpoint exists for
// end-of-day closes outside the scheduled hour.
func RunArchive(c *gin.Context) {
	moved, err := services.GetArchiveService().Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ARCHIVE_FAILED",
				"message": "Archival sweep failed, see details",
				"details": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"rowsMoved": moved,
		},
	})
}
