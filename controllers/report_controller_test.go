package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gino-rizzo/ginos-pizza-api/config"
	"github.com/gino-rizzo/ginos-pizza-api/models"
	"github.com/gino-rizzo/ginos-pizza-api/services"
)

const testHistoryTab = "OrderHistory"

// wireReportService points the report singleton at mocks over the given
// history and live tabs
func wireReportService(t *testing.T, history, live [][]string) {
	t.Helper()

	config.SetConfig(&config.Config{ReferenceTimezone: "America/New_York"})

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	sheets := services.NewMockSheetsService()
	sheets.SetTab(testHistoryTab, history)
	sheets.SetTab(testLiveTab, live)

	cache := services.NewSheetCache(func(ctx context.Context) ([]models.Order, *services.ColumnMap, error) {
		read, err := sheets.ReadTab(ctx, testLiveTab)
		if err != nil {
			return nil, nil, err
		}
		return services.ParseOrders(read, services.MaxItemsLive)
	}, services.DefaultCacheWindow)

	report := services.NewReportService(sheets, cache, testHistoryTab, loc)
	report.SetNowFunc(testClock)
	services.SetReportService(report)
}

func TestDailyReport_ExplicitRange(t *testing.T) {
	wireReportService(t, [][]string{
		testOrderHeader(),
		testOrderRow(map[string]string{"OrderNum": "A1", "OrderProcessed": "TRUE", "TimeOrdered": "3/3/2025 12:00:00"}),
		testOrderRow(map[string]string{"OrderNum": "A2", "OrderProcessed": "TRUE", "TimeOrdered": "3/5/2025 18:00:00"}),
	}, [][]string{testOrderHeader()})

	router := setupTestRouter()
	router.GET("/reports/daily", DailyReport)

	req, _ := http.NewRequest(http.MethodGet, "/reports/daily?start=2025-03-03&end=2025-03-05", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	assert.True(t, response["success"].(bool))

	data := response["data"].([]interface{})
	require.Len(t, data, 3, "every day of the range appears, empty days included")
	first := data[0].(map[string]interface{})
	assert.Equal(t, "2025-03-03", first["date"])
	assert.Equal(t, float64(1), first["orders"])
	middle := data[1].(map[string]interface{})
	assert.Equal(t, float64(0), middle["orders"])
}

func TestDailyReport_Validation(t *testing.T) {
	wireReportService(t, [][]string{testOrderHeader()}, [][]string{testOrderHeader()})

	tests := []struct {
		name string
		path string
	}{
		{"inverted range", "/reports/daily?start=2025-03-05&end=2025-03-03"},
		{"malformed date", "/reports/daily?start=03/05/2025&end=2025-03-06"},
		{"zero days", "/reports/daily?days=0"},
		{"days too large", "/reports/daily?days=400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/reports/daily", DailyReport)

			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			errorData := decodeResponse(t, w)["error"].(map[string]interface{})
			assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
		})
	}
}

func TestPopularItemsReport(t *testing.T) {
	wireReportService(t, [][]string{
		testOrderHeader(),
		testOrderRow(map[string]string{
			"OrderNum": "A1", "OrderProcessed": "TRUE", "TimeOrdered": "3/3/2025 12:00:00",
			"Order_item_1": "Margherita", "Qty_1": "3",
			"Order_item_2": "Calzone", "Qty_2": "1",
		}),
	}, [][]string{testOrderHeader()})

	router := setupTestRouter()
	router.GET("/reports/popular-items", PopularItemsReport)

	req, _ := http.NewRequest(http.MethodGet, "/reports/popular-items?start=2025-03-03&end=2025-03-03&top=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	item := data[0].(map[string]interface{})
	assert.Equal(t, "Margherita", item["name"])
	assert.Equal(t, float64(3), item["qty"])
}

func TestPopularItemsReport_BadTopParam(t *testing.T) {
	wireReportService(t, [][]string{testOrderHeader()}, [][]string{testOrderHeader()})

	router := setupTestRouter()
	router.GET("/reports/popular-items", PopularItemsReport)

	req, _ := http.NewRequest(http.MethodGet, "/reports/popular-items?top=-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHourlyReport(t *testing.T) {
	wireReportService(t, [][]string{testOrderHeader()}, [][]string{
		testOrderHeader(),
		testOrderRow(map[string]string{"OrderNum": "A1", "TimeOrdered": "3/9/2025 11:15:00"}),
	})

	router := setupTestRouter()
	router.GET("/reports/hourly", HourlyReport)

	req, _ := http.NewRequest(http.MethodGet, "/reports/hourly", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].([]interface{})
	require.Len(t, data, 24)
	eleven := data[11].(map[string]interface{})
	assert.Equal(t, float64(1), eleven["orders"])
}

func TestExportReport(t *testing.T) {
	wireReportService(t, [][]string{
		testOrderHeader(),
		testOrderRow(map[string]string{"OrderNum": "A1", "OrderProcessed": "TRUE", "TimeOrdered": "3/3/2025 12:00:00"}),
	}, [][]string{testOrderHeader()})

	router := setupTestRouter()
	router.GET("/reports/export", ExportReport)

	req, _ := http.NewRequest(http.MethodGet, "/reports/export?start=2025-03-03&end=2025-03-03", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-2025-03-03-to-2025-03-03.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Daily Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
