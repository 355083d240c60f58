package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Winner lifecycle. Pending is reserved for a future manual-review step and is
// never produced by the current flow; approvals insert 'approved' directly.
const (
	WinnerStatusPending  = "pending"
	WinnerStatusApproved = "approved"
	WinnerStatusRevoked  = "revoked"
)

// FreeWashCandidate is an eligibility record for a draw date. Candidates grant
// nothing by themselves; they only feed the draw and reschedule flows.
type FreeWashCandidate struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	DrawDate     time.Time `gorm:"type:date;not null;uniqueIndex:idx_candidate_date_customer,priority:1"`
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_candidate_date_customer,priority:2"`
	CustomerName string
	Phone        string
	Plate        string
	WashCount    int
	LastWashAt   time.Time
	Reason       string

	CreatedAt time.Time
}

func (c *FreeWashCandidate) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// FreeWashWinner is the per-date winner row. The "at most one approved winner
// per draw date" invariant is enforced by a partial unique index on draw_date
// scoped to status = 'approved' (created in config.Migrate); revoked rows do
// not block a fresh approval for the same date.
type FreeWashWinner struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	DrawDate time.Time `gorm:"type:date;index;not null"`

	CustomerID   *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName string
	Phone        string
	Plate        string
	WashCount    int

	Status     string `gorm:"type:varchar(20);not null;default:'approved'"`
	ApprovedBy string
	Note       string `gorm:"type:text"`
	NotifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w *FreeWashWinner) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}
