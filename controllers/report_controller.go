package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gino-rizzo/ginos-pizza-api/config"
	"github.com/gino-rizzo/ginos-pizza-api/services"
)

// DailyReport handles GET /api/v1/reports/daily?days=N or ?start=&end=
func DailyReport(c *gin.Context) {
	start, end, ok := parseReportRange(c)
	if !ok {
		return
	}

	counts, err := services.GetReportService().DailyCounts(c.Request.Context(), start, end)
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    counts,
	})
}

// PopularItemsReport handles GET /api/v1/reports/popular-items
func PopularItemsReport(c *gin.Context) {
	start, end, ok := parseReportRange(c)
	if !ok {
		return
	}

	topN := 10
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "top must be a positive integer",
				},
			})
			return
		}
		topN = n
	}

	items, err := services.GetReportService().PopularItems(c.Request.Context(), start, end, topN)
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// HourlyReport handles GET /api/v1/reports/hourly - today's order inflow
// from the live cache
func HourlyReport(c *gin.Context) {
	histogram, err := services.GetReportService().HourlyHistogram(c.Request.Context())
	if err != nil {
		respondFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    histogram,
	})
}

// ExportReport handles GET /api/v1/reports/export - the range as an XLSX download
func ExportReport(c *gin.Context) {
	start, end, ok := parseReportRange(c)
	if !ok {
		return
	}

	content, err := services.GetReportService().ExportXLSX(c.Request.Context(), start, end)
	if err != nil {
		respondFetchError(c, err)
		return
	}

	filename := fmt.Sprintf("orders-%s-to-%s.xlsx", start.Format("2006-01-02"), end.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// parseReportRange reads either days=N (last N days ending today) or an
// explicit start/end pair of YYYY-MM-DD dates in the reference timezone
func parseReportRange(c *gin.Context) (time.Time, time.Time, bool) {
	cfg := config.GetConfig()
	loc, err := time.LoadLocation(cfg.ReferenceTimezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)

	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw != "" || endRaw != "" {
		start, err1 := time.ParseInLocation("2006-01-02", startRaw, loc)
		end, err2 := time.ParseInLocation("2006-01-02", endRaw, loc)
		if err1 != nil || err2 != nil || end.Before(start) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "start and end must be YYYY-MM-DD with start <= end",
				},
			})
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 366 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "days must be between 1 and 366",
				},
			})
			return time.Time{}, time.Time{}, false
		}
		days = n
	}
	return now.AddDate(0, 0, -(days - 1)), now, true
}
