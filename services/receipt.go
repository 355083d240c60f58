// services/receipt.go
package services

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/garane84/shynne-autowash-backend/models"

	"gorm.io/gorm"
)

const receiptPrefix = "WSH-"

// GenerateReceiptNumber builds a short human-readable receipt id from the
// low-order digits of the current time plus two random digits. Each candidate
// is collision-checked against existing washes; after five attempts it falls
// back to a nanosecond timestamp id that cannot collide in practice.
func GenerateReceiptNumber(db *gorm.DB, now time.Time, rng *rand.Rand) (string, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(now.UnixNano()))
	}

	for attempt := 0; attempt < 5; attempt++ {
		candidate := fmt.Sprintf("%s%06d%02d", receiptPrefix, now.Unix()%1000000, rng.Intn(100))

		var count int64
		if err := db.Model(&models.Wash{}).
			Where("receipt_number = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}

	return fmt.Sprintf("%s%d", receiptPrefix, now.UnixNano()), nil
}
