package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gino-rizzo/ginos-pizza-api/services"
)

// PrinterStatus handles GET /api/v1/printer/status - a lightweight
// reachability probe of the configured printer endpoint
func PrinterStatus(c *gin.Context) {
	status := services.GetPrinterService().CheckAvailability(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"mode":      services.GetPrinterService().Mode(),
			"available": status.Available,
			"message":   status.Message,
		},
	})
}
