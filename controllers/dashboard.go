package controllers

import (
	"net/http"
	"time"

	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/models"
	"github.com/garane84/shynne-autowash-backend/services"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/gin-gonic/gin"
)

type RecentWash struct {
	ReceiptNumber string    `json:"receiptNumber"`
	CustomerName  string    `json:"customerName"`
	ServiceName   string    `json:"serviceName"`
	Plate         string    `json:"plate"`
	UnitPrice     float64   `json:"unitPrice"`
	IsFree        bool      `json:"isFree"`
	WashedAt      time.Time `json:"washedAt"`
}

func GetDashboardOverview(c *gin.Context) {
	now := time.Now()
	dayStart := utils.BeginningOfDay(now)
	monthStart, _ := utils.MonthBounds(now)

	// Today's washes
	var todayWashes int64
	config.DB.Model(&models.Wash{}).
		Where("washed_at >= ? AND deleted_at IS NULL", dayStart).
		Count(&todayWashes)

	// Today's revenue, commission and profit
	var todayMoney struct {
		Revenue    float64
		Commission float64
		Profit     float64
	}
	config.DB.Model(&models.Wash{}).
		Where("washed_at >= ? AND deleted_at IS NULL", dayStart).
		Select(`COALESCE(SUM(unit_price), 0) AS revenue,
			COALESCE(SUM(commission_amount), 0) AS commission,
			COALESCE(SUM(profit_amount), 0) AS profit`).
		Scan(&todayMoney)

	// Free washes granted today, by promo track
	var freeToday []struct {
		PromoCode string
		Count     int64
	}
	config.DB.Model(&models.Wash{}).
		Where("washed_at >= ? AND is_free = ? AND deleted_at IS NULL", dayStart, true).
		Select("promo_code, COUNT(*) AS count").
		Group("promo_code").
		Scan(&freeToday)
	freeByPromo := gin.H{}
	for _, row := range freeToday {
		freeByPromo[row.PromoCode] = row.Count
	}

	// Monthly revenue so far
	var monthlyRevenue float64
	config.DB.Model(&models.Wash{}).
		Where("washed_at >= ? AND deleted_at IS NULL", monthStart).
		Select("COALESCE(SUM(unit_price), 0)").Scan(&monthlyRevenue)

	// Total customers
	var totalCustomers int64
	config.DB.Model(&models.Customer{}).Where("deleted_at IS NULL").Count(&totalCustomers)

	// Today's approved draw winner, if any
	registry := services.NewDrawRegistry(config.DB, nil)
	winner, err := registry.GetApprovedWinner(now)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to look up today's winner")
		return
	}

	// Recent washes
	var recentWashes []RecentWash
	config.DB.Raw(`
        SELECT w.receipt_number, COALESCE(c.name, '') AS customer_name,
               s.name AS service_name, w.plate, w.unit_price, w.is_free, w.washed_at
        FROM washes w
        JOIN services s ON s.id = w.service_id
        LEFT JOIN customers c ON c.id = w.customer_id
        WHERE w.deleted_at IS NULL
        ORDER BY w.washed_at DESC
        LIMIT 5
    `).Scan(&recentWashes)

	response := gin.H{
		"todayWashes":     todayWashes,
		"todayRevenue":    todayMoney.Revenue,
		"todayCommission": todayMoney.Commission,
		"todayProfit":     todayMoney.Profit,
		"freeWashesToday": freeByPromo,
		"monthlyRevenue":  monthlyRevenue,
		"totalCustomers":  totalCustomers,
		"todaysWinner":    winner,
		"recentWashes":    recentWashes,
	}

	c.JSON(http.StatusOK, response)
}
