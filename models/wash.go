package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wash is the immutable transaction record of one performed wash. Commission
// and profit are computed once at creation (profit = price - commission, both
// rounded to 2 decimals) and only recomputed on an explicit price/pct update.
// The chk_wash_money constraint keeps the three money fields consistent.
type Wash struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	ReceiptNumber string    `gorm:"uniqueIndex;not null"`

	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
	ServiceID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	StaffID    *uuid.UUID `gorm:"type:uuid;index"`

	Plate       string `gorm:"index"`
	CarCategory string `gorm:"type:varchar(20);default:'sedan'"` // sedan, suv, pickup, truck

	UnitPrice        float64 `gorm:"type:decimal(10,2);not null"`
	CommissionPct    float64 `gorm:"type:decimal(5,2);not null"`
	CommissionAmount float64 `gorm:"type:decimal(10,2);not null"`
	ProfitAmount     float64 `gorm:"type:decimal(10,2);not null;check:chk_wash_money,abs(commission_amount + profit_amount - unit_price) < 0.005"`

	IsFree      bool       `gorm:"default:false"`
	PromotionID *uuid.UUID `gorm:"type:uuid;index"`
	PromoCode   string     `gorm:"type:varchar(30)"`

	WashedAt time.Time `gorm:"index;not null"`
	Notes    string

	gorm.Model
}

func (w *Wash) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}
