// services/ledger.go
package services

import (
	"errors"
	"time"

	"github.com/garane84/shynne-autowash-backend/models"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetSettings returns the singleton promotion settings row, creating it with
// defaults on first read.
func GetSettings(db *gorm.DB) (models.Settings, error) {
	var settings models.Settings
	err := db.Where(models.Settings{ID: 1}).FirstOrCreate(&settings).Error
	return settings, err
}

// FindOrCreateCustomer resolves a customer identity. Match priority is phone
// first, then plate; a new customer is created when neither matches. Returns
// an error when no identity field is supplied.
func FindOrCreateCustomer(db *gorm.DB, phone, plate, name string) (*models.Customer, error) {
	plate = utils.NormalizePlate(plate)
	if phone == "" && plate == "" {
		return nil, errors.New("customer identity requires a phone or a plate")
	}

	var customer models.Customer
	if phone != "" {
		if err := db.Where("phone = ?", phone).First(&customer).Error; err == nil {
			return &customer, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if plate != "" {
		if err := db.Where("plate = ?", plate).First(&customer).Error; err == nil {
			return &customer, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	customer = models.Customer{
		Name:     name,
		Phone:    phone,
		Plate:    plate,
		IsActive: true,
	}
	if err := db.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// ActivePromotionID returns the id of the active promotion with the given
// code, or nil when the promotion is missing or inactive.
func ActivePromotionID(db *gorm.DB, code string) (*uuid.UUID, error) {
	var promo models.Promotion
	err := db.Where("code = ? AND is_active = ?", code, true).First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promo.ID, nil
}

// CustomerWashCountInMonth counts a customer's washes inside the calendar
// month of t. The wash being created is not yet persisted, so it is never
// part of the count.
func CustomerWashCountInMonth(db *gorm.DB, customerID uuid.UUID, t time.Time) (int64, error) {
	start, end := utils.MonthBounds(t)
	var count int64
	err := db.Model(&models.Wash{}).
		Where("customer_id = ? AND washed_at >= ? AND washed_at < ?", customerID, start, end).
		Count(&count).Error
	return count, err
}
