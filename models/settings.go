package models

import "time"

// Settings is the single-row promotion configuration. It is fetched once per
// reward evaluation and passed around as a value, never read as global state.
type Settings struct {
	ID uint `gorm:"primaryKey"`

	PromoFreeEnabled         bool    `gorm:"default:false"`
	PromoFreeProb            float64 `gorm:"type:decimal(5,4);default:0.05"` // uniform draw in [0,1)
	PromoFreeMinVisits       int     `gorm:"default:5"`
	PromoFreeDailyCap        int     `gorm:"default:0"` // 0 = uncapped
	FeaturedFreeOncePerMonth bool    `gorm:"default:true"`

	DefaultCommissionPct float64 `gorm:"type:decimal(5,2);default:30"`

	UpdatedAt time.Time
}
