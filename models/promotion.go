package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stable promo codes distinguishing the reward tracks.
const (
	PromoFeaturedVehicle = "featured-vehicle"
	PromoLoyalty13th     = "loyalty-13th"
	PromoRandomFree      = "random-free"
)

type Promotion struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Code        string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Name        string    `gorm:"not null"`
	Description string
	IsActive    bool `gorm:"default:true"`

	gorm.Model
}

func (p *Promotion) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// FeaturedVehicle marks a plate as eligible for one free wash in the given
// calendar month. Month is stored as "YYYY-MM".
type FeaturedVehicle struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key"`
	Plate string    `gorm:"not null;uniqueIndex:idx_featured_plate_month,priority:1"`
	Month string    `gorm:"type:varchar(7);not null;uniqueIndex:idx_featured_plate_month,priority:2"`
	Note  string

	CreatedAt time.Time
}

func (f *FeaturedVehicle) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}
