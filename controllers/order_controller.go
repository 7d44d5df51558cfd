package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gino-rizzo/ginos-pizza-api/services"
)

// IncomingOrders handles GET /api/v1/orders/incoming - today's unfired orders
func IncomingOrders(c *gin.Context) {
	orders, err := services.GetQueryService().Incoming(c.Request.Context())
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// UpdatingOrders handles GET /api/v1/orders/updating - orders paused by a
// pending customer update
func UpdatingOrders(c *gin.Context) {
	orders, err := services.GetQueryService().Updating(c.Request.Context())
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// ProcessedOrders handles GET /api/v1/orders/processed - fired orders, any day
func ProcessedOrders(c *gin.Context) {
	orders, err := services.GetQueryService().Processed(c.Request.Context())
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrderByRow handles GET /api/v1/orders/by-row/:rowIndex. A 404 here
// usually means the row was archived since the UI's last poll; the UI is
// expected to clear its selection, not retry.
func GetOrderByRow(c *gin.Context) {
	rowIndex, ok := parseRowIndex(c)
	if !ok {
		return
	}

	order, err := services.GetQueryService().OrderByRow(c.Request.Context(), rowIndex)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order no longer exists",
				},
			})
			return
		}
		respondFetchError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// FireOrder handles POST /api/v1/orders/:rowIndex/fire - print to kitchen
// and mark processed
func FireOrder(c *gin.Context) {
	rowIndex, ok := parseRowIndex(c)
	if !ok {
		return
	}

	order, err := services.GetMutationService().Fire(c.Request.Context(), rowIndex)
	if err != nil {
		respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ReprintOrder handles POST /api/v1/orders/:rowIndex/reprint - print an
// already-processed order again
func ReprintOrder(c *gin.Context) {
	rowIndex, ok := parseRowIndex(c)
	if !ok {
		return
	}

	order, err := services.GetMutationService().Reprint(c.Request.Context(), rowIndex)
	if err != nil {
		respondMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// parseRowIndex validates the :rowIndex path parameter. Data rows start at
// sheet row 2; row 1 is the header.
func parseRowIndex(c *gin.Context) (int, bool) {
	rowIndex, err := strconv.Atoi(c.Param("rowIndex"))
	if err != nil || rowIndex < 2 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "rowIndex must be an integer >= 2",
			},
		})
		return 0, false
	}
	return rowIndex, true
}

// respondFetchError maps a cache/sheet failure to the generic transient
// error envelope. Retry is the caller's responsibility via its own polling.
func respondFetchError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrSchema) {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SHEET_SCHEMA_ERROR",
				"message": "Sheet schema is invalid",
				"details": err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "SHEET_UNAVAILABLE",
			"message": "Failed to read orders from the sheet",
			"details": err.Error(),
		},
	})
}

func respondMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order no longer exists",
			},
		})
	case errors.Is(err, services.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ALREADY_PROCESSED",
				"message": "Order is already processed; use reprint",
			},
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ACTION_FAILED",
				"message": "Action failed, see details",
				"details": err.Error(),
			},
		})
	}
}
