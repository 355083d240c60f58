// services/draw.go
package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/garane84/shynne-autowash-backend/models"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNoCandidates   = errors.New("no eligible candidates for the draw")
	ErrWinnerNotFound = errors.New("winner not found")
)

// ConflictError reports a duplicate approved winner or candidate; the
// conflicting date is always part of the message.
type ConflictError struct {
	Date   time.Time
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s for %s", e.Reason, e.Date.Format("2006-01-02"))
}

// CandidateQuery selects the candidate pool for a draw date: customers whose
// count of matching-service washes in the date's calendar month meets
// MinWashes.
type CandidateQuery struct {
	Date          time.Time
	MinWashes     int
	ServiceFilter string // service id, or case-insensitive name substring
	Limit         int
}

// WinnerIdentity names the customer being approved for a date. CustomerID is
// preferred; phone/plate identify walk-ins recorded without a customer row.
type WinnerIdentity struct {
	CustomerID   *uuid.UUID
	CustomerName string
	Phone        string
	Plate        string
	WashCount    int
}

// DrawResult carries either an existing/new approved winner or, when the
// draw ran without auto-approve, a persisted suggestion awaiting approval.
type DrawResult struct {
	Winner       *models.FreeWashWinner    `json:"winner,omitempty"`
	Suggestion   *models.FreeWashCandidate `json:"suggestion,omitempty"`
	AlreadyDrawn bool                      `json:"alreadyDrawn"`
	PoolSize     int                       `json:"poolSize"`
}

// DrawRegistry owns the daily free-wash approval workflow and is the only
// writer of winner rows. The one-approved-winner-per-date invariant lives in
// the storage layer (partial unique index); every pre-check here is advisory.
type DrawRegistry struct {
	db  *gorm.DB
	rng *rand.Rand
}

func NewDrawRegistry(db *gorm.DB, rng *rand.Rand) *DrawRegistry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DrawRegistry{db: db, rng: rng}
}

// ListCandidates computes the eligible pool for the month containing the
// date, ranked by wash count desc then recency desc. Read-only: the rows are
// not persisted. Without a service filter the match falls back to a
// heuristic on "full"/"complete" service names.
func (r *DrawRegistry) ListCandidates(q CandidateQuery) ([]models.FreeWashCandidate, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.MinWashes <= 0 {
		q.MinWashes = 1
	}
	start, end := utils.MonthBounds(q.Date)

	query := r.db.Table("washes").
		Select(`customers.id AS customer_id, customers.name AS customer_name,
			customers.phone AS phone, customers.plate AS plate,
			COUNT(washes.id) AS wash_count, MAX(washes.washed_at) AS last_wash_at`).
		Joins("JOIN customers ON customers.id = washes.customer_id").
		Joins("JOIN services ON services.id = washes.service_id").
		Where("washes.washed_at >= ? AND washes.washed_at < ? AND washes.deleted_at IS NULL", start, end)

	if serviceID, err := uuid.Parse(q.ServiceFilter); err == nil {
		query = query.Where("services.id = ?", serviceID)
	} else if q.ServiceFilter != "" {
		query = query.Where("LOWER(services.name) LIKE ?", "%"+strings.ToLower(q.ServiceFilter)+"%")
	} else {
		query = query.Where("LOWER(services.name) LIKE ? OR LOWER(services.name) LIKE ?", "%full%", "%complete%")
	}

	// last_wash_at is an aggregate, so drivers report no column type for it;
	// scan as text and parse to stay portable across Postgres and SQLite.
	var rows []struct {
		CustomerID   uuid.UUID
		CustomerName string
		Phone        string
		Plate        string
		WashCount    int
		LastWashAt   string
	}
	if err := query.
		Group("customers.id, customers.name, customers.phone, customers.plate").
		Having("COUNT(washes.id) >= ?", q.MinWashes).
		Order("wash_count DESC, last_wash_at DESC").
		Limit(q.Limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	drawDate := utils.DateOnly(q.Date)
	candidates := make([]models.FreeWashCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, models.FreeWashCandidate{
			DrawDate:     drawDate,
			CustomerID:   row.CustomerID,
			CustomerName: row.CustomerName,
			Phone:        row.Phone,
			Plate:        row.Plate,
			WashCount:    row.WashCount,
			LastWashAt:   parseDBTime(row.LastWashAt),
			Reason:       fmt.Sprintf("%d qualifying washes in %s", row.WashCount, q.Date.Format("2006-01")),
		})
	}
	return candidates, nil
}

var dbTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseDBTime(value string) time.Time {
	for _, layout := range dbTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Draw is idempotent: an already approved winner for the date is returned
// unchanged. Otherwise it computes the pool (limit 200), persists it, and
// picks one candidate uniformly at random. Without autoApprove the pick is
// returned as a suggestion only; nothing is approved until Approve runs.
func (r *DrawRegistry) Draw(q CandidateQuery, autoApprove bool, operator string) (*DrawResult, error) {
	existing, err := r.GetApprovedWinner(q.Date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &DrawResult{Winner: existing, AlreadyDrawn: true}, nil
	}

	q.Limit = 200
	candidates, err := r.ListCandidates(q)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	for i := range candidates {
		if err := r.db.Where("draw_date = ? AND customer_id = ?",
			candidates[i].DrawDate, candidates[i].CustomerID).
			FirstOrCreate(&candidates[i]).Error; err != nil {
			return nil, err
		}
	}

	picked := candidates[r.rng.Intn(len(candidates))]
	if !autoApprove {
		return &DrawResult{Suggestion: &picked, PoolSize: len(candidates)}, nil
	}

	winner, err := r.Approve(q.Date, WinnerIdentity{
		CustomerID:   &picked.CustomerID,
		CustomerName: picked.CustomerName,
		Phone:        picked.Phone,
		Plate:        picked.Plate,
		WashCount:    picked.WashCount,
	}, operator)
	if err != nil {
		return nil, err
	}
	return &DrawResult{Winner: winner, PoolSize: len(candidates)}, nil
}

// Approve inserts an approved winner row for the date. The pre-check yields
// a friendly Conflict before the write; the partial unique index decides the
// race when two approvals collide.
func (r *DrawRegistry) Approve(date time.Time, identity WinnerIdentity, operator string) (*models.FreeWashWinner, error) {
	if identity.CustomerID == nil && identity.Phone == "" && identity.Plate == "" {
		return nil, errors.New("winner identity requires a customer, phone or plate")
	}

	drawDate := utils.DateOnly(date)

	existing, err := r.GetApprovedWinner(drawDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ConflictError{Date: drawDate, Reason: "an approved winner already exists"}
	}

	winner := models.FreeWashWinner{
		DrawDate:     drawDate,
		CustomerID:   identity.CustomerID,
		CustomerName: identity.CustomerName,
		Phone:        identity.Phone,
		Plate:        identity.Plate,
		WashCount:    identity.WashCount,
		Status:       models.WinnerStatusApproved,
		ApprovedBy:   operator,
	}
	if err := r.db.Create(&winner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Date: drawDate, Reason: "an approved winner already exists"}
		}
		return nil, err
	}
	return &winner, nil
}

// Reschedule moves a drawn candidate to another date by creating a fresh
// candidate copy and an approved winner there. The original candidate and
// its date are left untouched.
func (r *DrawRegistry) Reschedule(candidateID uuid.UUID, toDate time.Time, operator string) (*models.FreeWashWinner, error) {
	var candidate models.FreeWashCandidate
	if err := r.db.First(&candidate, "id = ?", candidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWinnerNotFound
		}
		return nil, err
	}

	target := utils.DateOnly(toDate)

	existing, err := r.GetApprovedWinner(target)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ConflictError{Date: target, Reason: "an approved winner already exists"}
	}

	var dup int64
	if err := r.db.Model(&models.FreeWashCandidate{}).
		Where("draw_date = ? AND customer_id = ?", target, candidate.CustomerID).
		Count(&dup).Error; err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, &ConflictError{Date: target, Reason: "a candidate with this identity already exists"}
	}

	var winner *models.FreeWashWinner
	err = r.db.Transaction(func(tx *gorm.DB) error {
		moved := models.FreeWashCandidate{
			DrawDate:     target,
			CustomerID:   candidate.CustomerID,
			CustomerName: candidate.CustomerName,
			Phone:        candidate.Phone,
			Plate:        candidate.Plate,
			WashCount:    candidate.WashCount,
			LastWashAt:   candidate.LastWashAt,
			Reason:       fmt.Sprintf("rescheduled from %s", candidate.DrawDate.Format("2006-01-02")),
		}
		if err := tx.Create(&moved).Error; err != nil {
			return err
		}

		winner = &models.FreeWashWinner{
			DrawDate:     target,
			CustomerID:   &candidate.CustomerID,
			CustomerName: candidate.CustomerName,
			Phone:        candidate.Phone,
			Plate:        candidate.Plate,
			WashCount:    candidate.WashCount,
			Status:       models.WinnerStatusApproved,
			ApprovedBy:   operator,
			Note:         moved.Reason,
		}
		return tx.Create(winner).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Date: target, Reason: "an approved winner already exists"}
		}
		return nil, err
	}
	return winner, nil
}

// Revoke transitions an approved winner to revoked and appends the reason to
// its audit note. The date then falls outside the partial unique index and
// becomes available for a fresh approval.
func (r *DrawRegistry) Revoke(winnerID uuid.UUID, reason string) (*models.FreeWashWinner, error) {
	var winner models.FreeWashWinner
	if err := r.db.First(&winner, "id = ?", winnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWinnerNotFound
		}
		return nil, err
	}

	winner.Status = models.WinnerStatusRevoked
	note := fmt.Sprintf("revoked: %s", reason)
	if winner.Note != "" {
		note = winner.Note + "; " + note
	}
	winner.Note = note

	if err := r.db.Save(&winner).Error; err != nil {
		return nil, err
	}
	return &winner, nil
}

// GetApprovedWinner returns the approved winner for a date, or nil when the
// date is still open.
func (r *DrawRegistry) GetApprovedWinner(date time.Time) (*models.FreeWashWinner, error) {
	var winner models.FreeWashWinner
	err := r.db.Where("draw_date = ? AND status = ?",
		utils.DateOnly(date), models.WinnerStatusApproved).
		First(&winner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &winner, nil
}
