// controllers/staff.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/models"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddStaffInput struct {
	Email         string   `json:"email" binding:"required,email"`
	Phone         string   `json:"phone"`
	Name          string   `json:"name" binding:"required"`
	Password      string   `json:"password" binding:"required,min=8"`
	CommissionPct *float64 `json:"commissionPct" binding:"omitempty,min=0,max=100"`
}

type UpdateStaffInput struct {
	Name          *string  `json:"name"`
	Phone         *string  `json:"phone"`
	CommissionPct *float64 `json:"commissionPct" binding:"omitempty,min=0,max=100"`
	IsActive      *bool    `json:"isActive"`
}

// GetStaff retrieves all staff members
func GetStaff(c *gin.Context) {
	var staff []models.User
	if err := config.DB.Where("role = ?", "washer").Find(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve staff")
		return
	}

	// Never expose password hashes
	out := make([]gin.H, 0, len(staff))
	for _, member := range staff {
		out = append(out, gin.H{
			"id":            member.ID,
			"name":          member.Name,
			"email":         member.Email,
			"phone":         member.Phone,
			"commissionPct": member.CommissionPct,
			"isActive":      member.IsActive,
		})
	}

	c.JSON(http.StatusOK, out)
}

// AddStaff registers a new washer account
func AddStaff(c *gin.Context) {
	var input AddStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existingUser models.User
	if err := config.DB.Where("email = ?", input.Email).
		First(&existingUser).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	staff := models.User{
		Email:    input.Email,
		Phone:    input.Phone,
		Name:     input.Name,
		Password: input.Password, // Hashed in BeforeCreate hook
		Role:     "washer",
		IsActive: true,
	}
	if input.CommissionPct != nil {
		staff.CommissionPct = *input.CommissionPct
	}

	if err := config.DB.Create(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create staff member")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":            staff.ID,
		"name":          staff.Name,
		"email":         staff.Email,
		"commissionPct": staff.CommissionPct,
	})
}

// UpdateStaff updates a washer account
func UpdateStaff(c *gin.Context) {
	staffID := c.Param("id")
	staffUUID, err := uuid.Parse(staffID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
		return
	}

	var input UpdateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var staff models.User
	if err := config.DB.Where("id = ? AND role = ?", staffUUID, "washer").
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		staff.Name = *input.Name
	}
	if input.Phone != nil {
		staff.Phone = *input.Phone
	}
	if input.CommissionPct != nil {
		staff.CommissionPct = *input.CommissionPct
	}
	if input.IsActive != nil {
		staff.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update staff member")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            staff.ID,
		"name":          staff.Name,
		"email":         staff.Email,
		"phone":         staff.Phone,
		"commissionPct": staff.CommissionPct,
		"isActive":      staff.IsActive,
	})
}

// DeleteStaff soft deletes a washer account
func DeleteStaff(c *gin.Context) {
	staffID := c.Param("id")
	staffUUID, err := uuid.Parse(staffID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
		return
	}

	result := config.DB.Where("id = ? AND role = ?", staffUUID, "washer").
		Delete(&models.User{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete staff member")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted successfully"})
}
