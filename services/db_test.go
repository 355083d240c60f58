package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database with the full schema,
// the partial unique winner index included, so the storage-level invariant is
// exercised for real.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, name, phone, plate string, visits int) *models.Customer {
	t.Helper()
	customer := models.Customer{
		Name:        name,
		Phone:       phone,
		Plate:       plate,
		TotalVisits: visits,
		IsActive:    true,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to seed customer %s: %v", name, err)
	}
	return &customer
}

func seedService(t *testing.T, db *gorm.DB, name string, price float64) *models.Service {
	t.Helper()
	service := models.Service{Name: name, Price: price, IsActive: true}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("failed to seed service %s: %v", name, err)
	}
	return &service
}

var receiptSeq int

func seedWash(t *testing.T, db *gorm.DB, customer *models.Customer, service *models.Service, washedAt time.Time) *models.Wash {
	t.Helper()
	return seedWashWithPromo(t, db, customer, service, washedAt, "")
}

func seedWashWithPromo(t *testing.T, db *gorm.DB, customer *models.Customer, service *models.Service, washedAt time.Time, promoCode string) *models.Wash {
	t.Helper()

	price := service.Price
	pct := 30.0
	isFree := promoCode != ""
	if isFree {
		price = 0
		pct = 0
	}
	commission, profit := SplitMoney(price, pct)

	receiptSeq++
	wash := models.Wash{
		ReceiptNumber:    fmt.Sprintf("TEST-%s-%d", strings.ReplaceAll(t.Name(), "/", "_"), receiptSeq),
		ServiceID:        service.ID,
		UnitPrice:        price,
		CommissionPct:    pct,
		CommissionAmount: commission,
		ProfitAmount:     profit,
		IsFree:           isFree,
		PromoCode:        promoCode,
		WashedAt:         washedAt,
	}
	if customer != nil {
		wash.CustomerID = &customer.ID
		wash.Plate = customer.Plate
	}
	if err := db.Create(&wash).Error; err != nil {
		t.Fatalf("failed to seed wash: %v", err)
	}
	return &wash
}

func updateSettings(t *testing.T, db *gorm.DB, values map[string]interface{}) {
	t.Helper()
	if err := db.Model(&models.Settings{}).Where("id = ?", 1).
		Updates(values).Error; err != nil {
		t.Fatalf("failed to update settings: %v", err)
	}
}

func setPromotionActive(t *testing.T, db *gorm.DB, code string, active bool) {
	t.Helper()
	if err := db.Model(&models.Promotion{}).Where("code = ?", code).
		Update("is_active", active).Error; err != nil {
		t.Fatalf("failed to toggle promotion %s: %v", code, err)
	}
}
