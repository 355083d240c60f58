// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/models"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReportController handles all reporting functions
type ReportController struct{}

// MonthlySummary represents the report data for one month
type MonthlySummary struct {
	Month            string           `json:"month"`
	Revenue          float64          `json:"revenue"`
	Commission       float64          `json:"commission"`
	Profit           float64          `json:"profit"`
	RevenueGrowth    float64          `json:"revenueGrowth"`
	TotalWashes      int              `json:"totalWashes"`
	FreeWashes       int              `json:"freeWashes"`
	StaffCommissions []StaffSummary   `json:"staffCommissions"`
	TopServices      []ServiceSummary `json:"topServices"`
}

type StaffSummary struct {
	Name       string  `json:"name"`
	Washes     int     `json:"washes"`
	Commission float64 `json:"commission"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// GetMonthlyReport returns the commission and revenue summary for a month
func (rc *ReportController) GetMonthlyReport(c *gin.Context) {
	monthParam := c.DefaultQuery("month", utils.MonthKey(time.Now()))
	parsed, err := time.Parse("2006-01", monthParam)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid month format, expected YYYY-MM")
		return
	}

	start, end := utils.MonthBounds(parsed)

	revenue, commission, profit, err := rc.getMoneyTotals(start, end)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get monthly totals")
		return
	}

	prevRevenue, _, _, err := rc.getMoneyTotals(start.AddDate(0, -1, 0), start)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get previous month totals")
		return
	}

	var totalWashes, freeWashes int64
	if err := config.DB.Model(&models.Wash{}).
		Where("washed_at >= ? AND washed_at < ? AND deleted_at IS NULL", start, end).
		Count(&totalWashes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count washes")
		return
	}
	if err := config.DB.Model(&models.Wash{}).
		Where("washed_at >= ? AND washed_at < ? AND is_free = ? AND deleted_at IS NULL", start, end, true).
		Count(&freeWashes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count free washes")
		return
	}

	staffCommissions, err := rc.getStaffCommissions(start, end, 10)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get staff commissions")
		return
	}

	topServices, err := rc.getTopServices(start, end, 5)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top services")
		return
	}

	summary := MonthlySummary{
		Month:            monthParam,
		Revenue:          revenue,
		Commission:       commission,
		Profit:           profit,
		RevenueGrowth:    rc.calculateGrowthPercentage(revenue, prevRevenue),
		TotalWashes:      int(totalWashes),
		FreeWashes:       int(freeWashes),
		StaffCommissions: staffCommissions,
		TopServices:      topServices,
	}

	c.JSON(http.StatusOK, summary)
}

// Helper functions for reports

func (rc *ReportController) getMoneyTotals(start, end time.Time) (revenue, commission, profit float64, err error) {
	var totals struct {
		Revenue    float64
		Commission float64
		Profit     float64
	}
	err = config.DB.Model(&models.Wash{}).
		Where("washed_at >= ? AND washed_at < ? AND deleted_at IS NULL", start, end).
		Select(`COALESCE(SUM(unit_price), 0) AS revenue,
			COALESCE(SUM(commission_amount), 0) AS commission,
			COALESCE(SUM(profit_amount), 0) AS profit`).
		Scan(&totals).Error
	return totals.Revenue, totals.Commission, totals.Profit, err
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func (rc *ReportController) getStaffCommissions(start, end time.Time, limit int) ([]StaffSummary, error) {
	var staff []StaffSummary

	err := config.DB.Table("washes").
		Select("users.name, COUNT(washes.id) as washes, SUM(washes.commission_amount) as commission").
		Joins("JOIN users ON users.id = washes.staff_id").
		Where("washes.washed_at >= ? AND washes.washed_at < ? AND washes.deleted_at IS NULL AND users.deleted_at IS NULL", start, end).
		Group("users.name").
		Order("commission DESC").
		Limit(limit).
		Scan(&staff).Error

	return staff, err
}

func (rc *ReportController) getTopServices(start, end time.Time, limit int) ([]ServiceSummary, error) {
	var services []ServiceSummary

	err := config.DB.Table("washes").
		Select("services.name, COUNT(washes.id) as count, SUM(washes.unit_price) as revenue").
		Joins("JOIN services ON services.id = washes.service_id").
		Where("washes.washed_at >= ? AND washes.washed_at < ? AND washes.deleted_at IS NULL AND services.deleted_at IS NULL", start, end).
		Group("services.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&services).Error

	return services, err
}
