// controllers/promotion.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/models"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddFeaturedVehicleInput struct {
	Plate string `json:"plate" binding:"required"`
	Month string `json:"month"` // YYYY-MM, defaults to the current month
	Note  string `json:"note"`
}

type UpdatePromotionInput struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// GetPromotions lists the reward tracks and their active flags
func GetPromotions(c *gin.Context) {
	var promotions []models.Promotion
	if err := config.DB.Order("code").Find(&promotions).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve promotions")
		return
	}

	c.JSON(http.StatusOK, promotions)
}

// UpdatePromotion toggles a reward track on or off
func UpdatePromotion(c *gin.Context) {
	promoID := c.Param("id")
	promoUUID, err := uuid.Parse(promoID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid promotion ID format")
		return
	}

	var input UpdatePromotionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var promotion models.Promotion
	if err := config.DB.Where("id = ?", promoUUID).
		First(&promotion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Promotion not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	promotion.IsActive = *input.IsActive
	if err := config.DB.Save(&promotion).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update promotion")
		return
	}

	c.JSON(http.StatusOK, promotion)
}

// AddFeaturedVehicle marks a plate as featured for a calendar month
func AddFeaturedVehicle(c *gin.Context) {
	var input AddFeaturedVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	month := input.Month
	if month == "" {
		month = utils.MonthKey(time.Now())
	} else if _, err := time.Parse("2006-01", month); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid month format, expected YYYY-MM")
		return
	}

	featured := models.FeaturedVehicle{
		Plate: utils.NormalizePlate(input.Plate),
		Month: month,
		Note:  input.Note,
	}

	if err := config.DB.Create(&featured).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Plate is already featured for "+month)
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to add featured vehicle")
		}
		return
	}

	c.JSON(http.StatusCreated, featured)
}

// GetFeaturedVehicles lists featured plates, optionally for one month
func GetFeaturedVehicles(c *gin.Context) {
	query := config.DB.Model(&models.FeaturedVehicle{})

	if month := c.Query("month"); month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid month format, expected YYYY-MM")
			return
		}
		query = query.Where("month = ?", month)
	}

	var featured []models.FeaturedVehicle
	if err := query.Order("month DESC, plate").Find(&featured).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve featured vehicles")
		return
	}

	c.JSON(http.StatusOK, featured)
}

// DeleteFeaturedVehicle removes a featured entry
func DeleteFeaturedVehicle(c *gin.Context) {
	featuredID := c.Param("id")
	featuredUUID, err := uuid.Parse(featuredID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid featured vehicle ID format")
		return
	}

	result := config.DB.Where("id = ?", featuredUUID).Delete(&models.FeaturedVehicle{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete featured vehicle")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Featured vehicle not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Featured vehicle removed successfully"})
}
