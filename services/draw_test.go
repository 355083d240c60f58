package services

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/garane84/shynne-autowash-backend/models"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var drawDate = time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)

func seedPool(t *testing.T, db *gorm.DB, service *models.Service, phones ...string) []*models.Customer {
	t.Helper()
	customers := make([]*models.Customer, 0, len(phones))
	for i, phone := range phones {
		customer := seedCustomer(t, db, "Customer "+phone, phone, "", 0)
		// i+2 washes each so later customers rank higher
		for j := 0; j < i+2; j++ {
			seedWash(t, db, customer, service, drawDate.AddDate(0, 0, -j-1))
		}
		customers = append(customers, customer)
	}
	return customers
}

func TestListCandidatesRanking(t *testing.T) {
	db := newTestDB(t)
	service := seedService(t, db, "Full Wash", 5000)
	customers := seedPool(t, db, service, "+221770000001", "+221770000002", "+221770000003")

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	candidates, err := registry.ListCandidates(CandidateQuery{Date: drawDate, MinWashes: 2})
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}

	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	// Highest wash count first
	if candidates[0].CustomerID != customers[2].ID {
		t.Fatalf("expected %s on top, got %s", customers[2].ID, candidates[0].CustomerID)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].WashCount > candidates[i-1].WashCount {
			t.Fatal("candidates are not ordered by wash count descending")
		}
	}
	if candidates[0].LastWashAt.IsZero() {
		t.Fatal("expected last_wash_at to be populated")
	}
}

func TestListCandidatesMinWashesThreshold(t *testing.T) {
	db := newTestDB(t)
	service := seedService(t, db, "Full Wash", 5000)
	seedPool(t, db, service, "+221770000004", "+221770000005")

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	candidates, err := registry.ListCandidates(CandidateQuery{Date: drawDate, MinWashes: 3})
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected only the 3-wash customer, got %d candidates", len(candidates))
	}
	if candidates[0].WashCount != 3 {
		t.Fatalf("expected wash count 3, got %d", candidates[0].WashCount)
	}
}

func TestListCandidatesServiceHeuristic(t *testing.T) {
	db := newTestDB(t)
	full := seedService(t, db, "Complete Detailing", 8000)
	basic := seedService(t, db, "Exterior Rinse", 2000)

	eligible := seedCustomer(t, db, "Eligible", "+221770000006", "", 0)
	ineligible := seedCustomer(t, db, "Ineligible", "+221770000007", "", 0)
	for i := 0; i < 2; i++ {
		seedWash(t, db, eligible, full, drawDate.AddDate(0, 0, -i-1))
		seedWash(t, db, ineligible, basic, drawDate.AddDate(0, 0, -i-1))
	}

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	candidates, err := registry.ListCandidates(CandidateQuery{Date: drawDate, MinWashes: 2})
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}

	if len(candidates) != 1 || candidates[0].CustomerID != eligible.ID {
		t.Fatalf("expected only the complete-wash customer, got %+v", candidates)
	}
}

func TestListCandidatesExplicitServiceFilter(t *testing.T) {
	db := newTestDB(t)
	rinse := seedService(t, db, "Exterior Rinse", 2000)
	customer := seedCustomer(t, db, "Rinser", "+221770000008", "", 0)
	for i := 0; i < 2; i++ {
		seedWash(t, db, customer, rinse, drawDate.AddDate(0, 0, -i-1))
	}

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))

	byName, err := registry.ListCandidates(CandidateQuery{Date: drawDate, MinWashes: 2, ServiceFilter: "rinse"})
	if err != nil {
		t.Fatalf("ListCandidates by name failed: %v", err)
	}
	if len(byName) != 1 {
		t.Fatalf("expected 1 candidate via name filter, got %d", len(byName))
	}

	byID, err := registry.ListCandidates(CandidateQuery{Date: drawDate, MinWashes: 2, ServiceFilter: rinse.ID.String()})
	if err != nil {
		t.Fatalf("ListCandidates by id failed: %v", err)
	}
	if len(byID) != 1 {
		t.Fatalf("expected 1 candidate via id filter, got %d", len(byID))
	}
}

func TestDrawSuggestionDoesNotApprove(t *testing.T) {
	db := newTestDB(t)
	service := seedService(t, db, "Full Wash", 5000)
	seedPool(t, db, service, "+221770000009", "+221770000010")

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	result, err := registry.Draw(CandidateQuery{Date: drawDate, MinWashes: 2}, false, "owner")
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	if result.Suggestion == nil || result.Winner != nil {
		t.Fatalf("expected a suggestion and no winner, got %+v", result)
	}
	if result.PoolSize != 2 {
		t.Fatalf("expected pool size 2, got %d", result.PoolSize)
	}

	// The pool is persisted for the date, but nothing is approved yet
	var poolCount int64
	if err := db.Model(&models.FreeWashCandidate{}).
		Where("draw_date = ?", utils.DateOnly(drawDate)).Count(&poolCount).Error; err != nil {
		t.Fatalf("failed to count candidates: %v", err)
	}
	if poolCount != 2 {
		t.Fatalf("expected 2 persisted candidates, got %d", poolCount)
	}

	winner, err := registry.GetApprovedWinner(drawDate)
	if err != nil {
		t.Fatalf("GetApprovedWinner failed: %v", err)
	}
	if winner != nil {
		t.Fatal("suggestion-only draw must not approve a winner")
	}
}

func TestDrawAutoApproveIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	service := seedService(t, db, "Full Wash", 5000)
	seedPool(t, db, service, "+221770000011", "+221770000012")

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	first, err := registry.Draw(CandidateQuery{Date: drawDate, MinWashes: 2}, true, "owner")
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if first.Winner == nil || first.AlreadyDrawn {
		t.Fatalf("expected a freshly approved winner, got %+v", first)
	}
	if first.Winner.Status != models.WinnerStatusApproved {
		t.Fatalf("expected status approved, got %s", first.Winner.Status)
	}
	if first.Winner.ApprovedBy != "owner" {
		t.Fatalf("expected operator to be recorded, got %q", first.Winner.ApprovedBy)
	}

	second, err := registry.Draw(CandidateQuery{Date: drawDate, MinWashes: 2}, true, "owner")
	if err != nil {
		t.Fatalf("second Draw failed: %v", err)
	}
	if !second.AlreadyDrawn {
		t.Fatal("expected the second draw to report an existing winner")
	}
	if second.Winner.ID != first.Winner.ID {
		t.Fatal("the second draw must return the same winner unchanged")
	}
}

func TestDrawPickBelongsToPool(t *testing.T) {
	db := newTestDB(t)
	service := seedService(t, db, "Full Wash", 5000)
	customers := seedPool(t, db, service,
		"+221770000013", "+221770000014", "+221770000015", "+221770000016")

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(42)))
	result, err := registry.Draw(CandidateQuery{Date: drawDate, MinWashes: 2}, false, "owner")
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	found := false
	for _, c := range customers {
		if result.Suggestion.CustomerID == c.ID {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("suggested customer %s is not part of the seeded pool", result.Suggestion.CustomerID)
	}
}

func TestDrawWithEmptyPool(t *testing.T) {
	db := newTestDB(t)

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	_, err := registry.Draw(CandidateQuery{Date: drawDate, MinWashes: 2}, true, "owner")
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestApproveRejectsSecondWinnerForDate(t *testing.T) {
	db := newTestDB(t)
	alice := seedCustomer(t, db, "Alice", "+221770000017", "", 0)
	bob := seedCustomer(t, db, "Bob", "+221770000018", "", 0)

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	first, err := registry.Approve(drawDate, WinnerIdentity{
		CustomerID:   &alice.ID,
		CustomerName: alice.Name,
		Phone:        alice.Phone,
	}, "owner")
	if err != nil {
		t.Fatalf("first Approve failed: %v", err)
	}

	_, err = registry.Approve(drawDate, WinnerIdentity{
		CustomerID:   &bob.ID,
		CustomerName: bob.Name,
		Phone:        bob.Phone,
	}, "owner")

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected a ConflictError, got %v", err)
	}
	if !strings.Contains(conflict.Error(), "2025-11-15") {
		t.Fatalf("conflict message must name the date, got %q", conflict.Error())
	}

	// The first winner is untouched
	var stored models.FreeWashWinner
	if err := db.First(&stored, "id = ?", first.ID).Error; err != nil {
		t.Fatalf("failed to reload winner: %v", err)
	}
	if stored.CustomerName != alice.Name || stored.Status != models.WinnerStatusApproved {
		t.Fatalf("first winner was modified: %+v", stored)
	}
}

func TestApproveRequiresAnIdentity(t *testing.T) {
	db := newTestDB(t)

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	if _, err := registry.Approve(drawDate, WinnerIdentity{}, "owner"); err == nil {
		t.Fatal("expected an error for an empty winner identity")
	}
}

func TestWinnerIndexIsTheFinalArbiter(t *testing.T) {
	db := newTestDB(t)

	date := utils.DateOnly(drawDate)
	if err := db.Create(&models.FreeWashWinner{
		DrawDate:     date,
		CustomerName: "First",
		Status:       models.WinnerStatusApproved,
	}).Error; err != nil {
		t.Fatalf("failed to insert first winner: %v", err)
	}

	// Bypassing the registry must still be blocked by the partial unique index
	err := db.Create(&models.FreeWashWinner{
		DrawDate:     date,
		CustomerName: "Second",
		Status:       models.WinnerStatusApproved,
	}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected a duplicate key error from the index, got %v", err)
	}

	// A revoked row for the same date is outside the index scope
	if err := db.Create(&models.FreeWashWinner{
		DrawDate:     date,
		CustomerName: "Revoked",
		Status:       models.WinnerStatusRevoked,
	}).Error; err != nil {
		t.Fatalf("revoked rows must not collide with approved ones: %v", err)
	}
}

func TestRevokeFreesTheDate(t *testing.T) {
	db := newTestDB(t)
	alice := seedCustomer(t, db, "Alice", "+221770000019", "", 0)
	bob := seedCustomer(t, db, "Bob", "+221770000020", "", 0)

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	first, err := registry.Approve(drawDate, WinnerIdentity{CustomerID: &alice.ID, CustomerName: alice.Name}, "owner")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	revoked, err := registry.Revoke(first.ID, "no-show")
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if revoked.Status != models.WinnerStatusRevoked {
		t.Fatalf("expected status revoked, got %s", revoked.Status)
	}
	if !strings.Contains(revoked.Note, "no-show") {
		t.Fatalf("expected the note to carry the reason, got %q", revoked.Note)
	}

	replacement, err := registry.Approve(drawDate, WinnerIdentity{CustomerID: &bob.ID, CustomerName: bob.Name}, "owner")
	if err != nil {
		t.Fatalf("Approve after Revoke failed: %v", err)
	}
	if replacement.CustomerName != bob.Name {
		t.Fatalf("expected the replacement winner, got %+v", replacement)
	}
}

func TestRevokeUnknownWinner(t *testing.T) {
	db := newTestDB(t)

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	_, err := registry.Revoke(uuid.New(), "typo")
	if !errors.Is(err, ErrWinnerNotFound) {
		t.Fatalf("expected ErrWinnerNotFound, got %v", err)
	}
}

func TestRescheduleMovesWinnerToNewDate(t *testing.T) {
	db := newTestDB(t)
	alice := seedCustomer(t, db, "Alice", "+221770000021", "", 0)

	candidate := models.FreeWashCandidate{
		DrawDate:     utils.DateOnly(drawDate),
		CustomerID:   alice.ID,
		CustomerName: alice.Name,
		Phone:        alice.Phone,
		WashCount:    4,
	}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatalf("failed to seed candidate: %v", err)
	}

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	target := drawDate.AddDate(0, 0, 3)
	winner, err := registry.Reschedule(candidate.ID, target, "owner")
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	if !winner.DrawDate.Equal(utils.DateOnly(target)) {
		t.Fatalf("expected winner on %s, got %s", utils.DateOnly(target), winner.DrawDate)
	}
	if winner.Status != models.WinnerStatusApproved {
		t.Fatalf("expected an approved winner, got %s", winner.Status)
	}
	if !strings.Contains(winner.Note, "rescheduled from 2025-11-15") {
		t.Fatalf("expected the note to name the source date, got %q", winner.Note)
	}

	// The original candidate stays where it was
	var original models.FreeWashCandidate
	if err := db.First(&original, "id = ?", candidate.ID).Error; err != nil {
		t.Fatalf("failed to reload candidate: %v", err)
	}
	if !original.DrawDate.Equal(utils.DateOnly(drawDate)) {
		t.Fatal("reschedule must not move the original candidate")
	}

	// A candidate copy exists on the target date
	var moved int64
	if err := db.Model(&models.FreeWashCandidate{}).
		Where("draw_date = ? AND customer_id = ?", utils.DateOnly(target), alice.ID).
		Count(&moved).Error; err != nil {
		t.Fatalf("failed to count moved candidates: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected one candidate copy on the target date, got %d", moved)
	}
}

func TestRescheduleToOccupiedDate(t *testing.T) {
	db := newTestDB(t)
	alice := seedCustomer(t, db, "Alice", "+221770000022", "", 0)
	bob := seedCustomer(t, db, "Bob", "+221770000023", "", 0)

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	target := drawDate.AddDate(0, 0, 1)
	if _, err := registry.Approve(target, WinnerIdentity{CustomerID: &bob.ID, CustomerName: bob.Name}, "owner"); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	candidate := models.FreeWashCandidate{
		DrawDate:   utils.DateOnly(drawDate),
		CustomerID: alice.ID,
	}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatalf("failed to seed candidate: %v", err)
	}

	_, err := registry.Reschedule(candidate.ID, target, "owner")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected a ConflictError for the occupied date, got %v", err)
	}
}

func TestRescheduleDuplicateCandidate(t *testing.T) {
	db := newTestDB(t)
	alice := seedCustomer(t, db, "Alice", "+221770000024", "", 0)

	target := drawDate.AddDate(0, 0, 2)
	source := models.FreeWashCandidate{DrawDate: utils.DateOnly(drawDate), CustomerID: alice.ID}
	existing := models.FreeWashCandidate{DrawDate: utils.DateOnly(target), CustomerID: alice.ID}
	if err := db.Create(&source).Error; err != nil {
		t.Fatalf("failed to seed source candidate: %v", err)
	}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("failed to seed target candidate: %v", err)
	}

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	_, err := registry.Reschedule(source.ID, target, "owner")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected a ConflictError for the duplicate candidate, got %v", err)
	}
}

func TestRescheduleUnknownCandidate(t *testing.T) {
	db := newTestDB(t)

	registry := NewDrawRegistry(db, rand.New(rand.NewSource(1)))
	_, err := registry.Reschedule(uuid.New(), drawDate, "owner")
	if !errors.Is(err, ErrWinnerNotFound) {
		t.Fatalf("expected ErrWinnerNotFound, got %v", err)
	}
}
