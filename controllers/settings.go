// controllers/settings.go
package controllers

import (
	"net/http"

	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/services"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateSettingsInput struct {
	PromoFreeEnabled         *bool    `json:"promoFreeEnabled"`
	PromoFreeProb            *float64 `json:"promoFreeProb" binding:"omitempty,min=0,max=1"`
	PromoFreeMinVisits       *int     `json:"promoFreeMinVisits" binding:"omitempty,min=0"`
	PromoFreeDailyCap        *int     `json:"promoFreeDailyCap" binding:"omitempty,min=0"`
	FeaturedFreeOncePerMonth *bool    `json:"featuredFreeOncePerMonth"`
	DefaultCommissionPct     *float64 `json:"defaultCommissionPct" binding:"omitempty,min=0,max=100"`
}

// GetSettings returns the promotion configuration
func GetSettings(c *gin.Context) {
	settings, err := services.GetSettings(config.DB)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings updates the promotion configuration
func UpdateSettings(c *gin.Context) {
	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	settings, err := services.GetSettings(config.DB)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve settings")
		return
	}

	if input.PromoFreeEnabled != nil {
		settings.PromoFreeEnabled = *input.PromoFreeEnabled
	}
	if input.PromoFreeProb != nil {
		settings.PromoFreeProb = *input.PromoFreeProb
	}
	if input.PromoFreeMinVisits != nil {
		settings.PromoFreeMinVisits = *input.PromoFreeMinVisits
	}
	if input.PromoFreeDailyCap != nil {
		settings.PromoFreeDailyCap = *input.PromoFreeDailyCap
	}
	if input.FeaturedFreeOncePerMonth != nil {
		settings.FeaturedFreeOncePerMonth = *input.FeaturedFreeOncePerMonth
	}
	if input.DefaultCommissionPct != nil {
		settings.DefaultCommissionPct = *input.DefaultCommissionPct
	}

	if err := config.DB.Save(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}
