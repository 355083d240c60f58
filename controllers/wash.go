// controllers/wash.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/models"
	"github.com/garane84/shynne-autowash-backend/services"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateWashInput defines the expected JSON structure for recording a wash
type CreateWashInput struct {
	ServiceID     uuid.UUID  `json:"serviceId" binding:"required"`
	StaffID       *uuid.UUID `json:"staffId"`
	Phone         string     `json:"phone"`
	Plate         string     `json:"plate"`
	CustomerName  string     `json:"customerName"`
	CarCategory   string     `json:"carCategory" binding:"omitempty,oneof=sedan suv pickup truck"`
	Price         *float64   `json:"price" binding:"omitempty,min=0"` // overrides the service price
	CommissionPct *float64   `json:"commissionPct" binding:"omitempty,min=0,max=100"`
	WashedAt      *time.Time `json:"washedAt"`
	Notes         string     `json:"notes"`
}

// UpdateWashInput defines the expected JSON structure for updating a wash
type UpdateWashInput struct {
	StaffID       *uuid.UUID `json:"staffId"`
	CarCategory   *string    `json:"carCategory" binding:"omitempty,oneof=sedan suv pickup truck"`
	Price         *float64   `json:"price" binding:"omitempty,min=0"`
	CommissionPct *float64   `json:"commissionPct" binding:"omitempty,min=0,max=100"`
	Notes         *string    `json:"notes"`
}

// CreateWash records a wash transaction. The reward evaluator decides free or
// paid first; commission and profit are computed from its output so the money
// invariant holds by construction. Evaluation failures never block creation.
func CreateWash(c *gin.Context) {
	var input CreateWashInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Validate service exists and is active
	var service models.Service
	if err := config.DB.Where("id = ? AND is_active = ?", input.ServiceID, true).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Validate staff when assigned; their commission is the default pct
	commissionPct := input.CommissionPct
	if input.StaffID != nil {
		var staff models.User
		if err := config.DB.Where("id = ?", *input.StaffID).
			First(&staff).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Staff member not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
		if commissionPct == nil {
			commissionPct = &staff.CommissionPct
		}
	}

	price := service.Price
	if input.Price != nil {
		price = *input.Price
	}
	washedAt := time.Now()
	if input.WashedAt != nil {
		washedAt = *input.WashedAt
	}

	evaluator := services.NewRewardEvaluator(config.DB, nil)
	decision := evaluator.Evaluate(services.RewardInput{
		Phone:         input.Phone,
		Plate:         input.Plate,
		CustomerName:  input.CustomerName,
		Price:         price,
		CommissionPct: commissionPct,
		WashedAt:      washedAt,
	})

	commission, profit := services.SplitMoney(decision.Price, decision.CommissionPct)

	receiptNumber, err := services.GenerateReceiptNumber(config.DB, washedAt, nil)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate receipt number")
		return
	}

	carCategory := input.CarCategory
	if carCategory == "" {
		carCategory = "sedan"
	}

	wash := models.Wash{
		ReceiptNumber:    receiptNumber,
		CustomerID:       decision.CustomerID,
		ServiceID:        service.ID,
		StaffID:          input.StaffID,
		Plate:            utils.NormalizePlate(input.Plate),
		CarCategory:      carCategory,
		UnitPrice:        decision.Price,
		CommissionPct:    decision.CommissionPct,
		CommissionAmount: commission,
		ProfitAmount:     profit,
		IsFree:           decision.IsFree,
		PromotionID:      decision.PromotionID,
		PromoCode:        decision.PromoCode,
		WashedAt:         washedAt,
		Notes:            input.Notes,
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&wash).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record wash")
		return
	}

	// Update customer stats
	if decision.CustomerID != nil {
		if err := tx.Model(&models.Customer{}).Where("id = ?", *decision.CustomerID).
			Updates(map[string]interface{}{
				"total_visits": gorm.Expr("total_visits + ?", 1),
				"total_spent":  gorm.Expr("total_spent + ?", decision.Price),
				"last_visit":   washedAt,
			}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer stats")
			return
		}
	}

	tx.Commit()

	c.JSON(http.StatusCreated, wash)
}

// GetWashes retrieves washes with optional filters
func GetWashes(c *gin.Context) {
	query := config.DB.Model(&models.Wash{})

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("washed_at >= ?", parsed)
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("washed_at < ?", parsed.AddDate(0, 0, 1))
	}
	if staffID := c.Query("staffId"); staffID != "" {
		query = query.Where("staff_id = ?", staffID)
	}
	if c.Query("free") == "true" {
		query = query.Where("is_free = ?", true)
	}

	var washes []models.Wash
	if err := query.Order("washed_at DESC").Limit(500).Find(&washes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve washes")
		return
	}

	c.JSON(http.StatusOK, washes)
}

// GetWash retrieves a specific wash by ID
func GetWash(c *gin.Context) {
	washID := c.Param("id")
	washUUID, err := uuid.Parse(washID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid wash ID format")
		return
	}

	var wash models.Wash
	if err := config.DB.Where("id = ?", washUUID).
		First(&wash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Wash not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, wash)
}

// UpdateWash updates an existing wash. Commission and profit are recomputed
// only when a new price or percentage is supplied.
func UpdateWash(c *gin.Context) {
	washID := c.Param("id")
	washUUID, err := uuid.Parse(washID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid wash ID format")
		return
	}

	var input UpdateWashInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var wash models.Wash
	if err := config.DB.Where("id = ?", washUUID).
		First(&wash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Wash not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.StaffID != nil {
		var staff models.User
		if err := config.DB.Where("id = ?", *input.StaffID).
			First(&staff).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Staff member not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
		wash.StaffID = input.StaffID
	}
	if input.CarCategory != nil {
		wash.CarCategory = *input.CarCategory
	}
	if input.Notes != nil {
		wash.Notes = *input.Notes
	}

	if input.Price != nil || input.CommissionPct != nil {
		if input.Price != nil {
			wash.UnitPrice = *input.Price
		}
		if input.CommissionPct != nil {
			wash.CommissionPct = *input.CommissionPct
		}
		wash.CommissionAmount, wash.ProfitAmount = services.SplitMoney(wash.UnitPrice, wash.CommissionPct)
	}

	if err := config.DB.Save(&wash).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update wash")
		return
	}

	c.JSON(http.StatusOK, wash)
}

// DeleteWash soft deletes a wash and reverses the customer stats
func DeleteWash(c *gin.Context) {
	washID := c.Param("id")
	washUUID, err := uuid.Parse(washID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid wash ID format")
		return
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var wash models.Wash
	if err := tx.Where("id = ?", washUUID).
		First(&wash).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Wash not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := tx.Delete(&wash).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete wash")
		return
	}

	// Update customer stats (decrement)
	if wash.CustomerID != nil {
		if err := tx.Model(&models.Customer{}).Where("id = ?", *wash.CustomerID).
			Updates(map[string]interface{}{
				"total_visits": gorm.Expr("total_visits - ?", 1),
				"total_spent":  gorm.Expr("total_spent - ?", wash.UnitPrice),
			}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer stats")
			return
		}
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Wash deleted successfully"})
}
