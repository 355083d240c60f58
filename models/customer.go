package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is matched by phone first, then by plate. At least one of the two
// must be present; the check lives at the API layer, not here.
type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	Name  string
	Phone string `gorm:"index"`
	Plate string `gorm:"index"`

	TotalVisits int     `gorm:"default:0"`
	TotalSpent  float64 `gorm:"type:decimal(10,2);default:0.0"`
	LastVisit   *time.Time
	Notes       string
	IsActive    bool `gorm:"default:true"`

	Washes []Wash `gorm:"foreignKey:CustomerID"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
