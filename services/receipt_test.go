package services

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/garane84/shynne-autowash-backend/models"
)

func TestGenerateReceiptNumberFormat(t *testing.T) {
	db := newTestDB(t)

	now := time.Date(2025, time.November, 10, 9, 0, 0, 0, time.UTC)
	receipt, err := GenerateReceiptNumber(db, now, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("GenerateReceiptNumber failed: %v", err)
	}

	if !strings.HasPrefix(receipt, "WSH-") {
		t.Fatalf("expected the WSH- prefix, got %q", receipt)
	}
	if len(receipt) != len("WSH-")+8 {
		t.Fatalf("expected 8 digits after the prefix, got %q", receipt)
	}
}

func TestGenerateReceiptNumberAvoidsCollisions(t *testing.T) {
	db := newTestDB(t)
	service := seedService(t, db, "Full Wash", 5000)

	now := time.Date(2025, time.November, 10, 9, 0, 0, 0, time.UTC)

	// Occupy the receipt the first seeded attempt would produce
	taken := fmt.Sprintf("WSH-%06d%02d", now.Unix()%1000000, rand.New(rand.NewSource(1)).Intn(100))
	commission, profit := SplitMoney(service.Price, 30)
	if err := db.Create(&models.Wash{
		ReceiptNumber:    taken,
		ServiceID:        service.ID,
		UnitPrice:        service.Price,
		CommissionPct:    30,
		CommissionAmount: commission,
		ProfitAmount:     profit,
		WashedAt:         now,
	}).Error; err != nil {
		t.Fatalf("failed to seed colliding wash: %v", err)
	}

	receipt, err := GenerateReceiptNumber(db, now, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("GenerateReceiptNumber failed: %v", err)
	}
	if receipt == taken {
		t.Fatalf("expected a fresh receipt, got the taken one %q", receipt)
	}
	if !strings.HasPrefix(receipt, "WSH-") {
		t.Fatalf("expected the WSH- prefix, got %q", receipt)
	}
}
