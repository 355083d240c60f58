package config

import (
	"os"

	"github.com/garane84/shynne-autowash-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := os.Getenv("DB_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("Failed to connect database")
	}

	DB = db
}

// Migrate creates the schema, the partial unique index guarding the
// one-approved-winner-per-date invariant, and the seed rows. It takes the DB
// handle explicitly so tests can run it against their own connection.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Service{},
		&models.Wash{},
		&models.Promotion{},
		&models.FeaturedVehicle{},
		&models.FreeWashCandidate{},
		&models.FreeWashWinner{},
		&models.NotificationLog{},
		&models.Settings{},
	); err != nil {
		return err
	}

	// gorm tags cannot express partial indexes. This index is the final
	// arbiter for concurrent approvals; the application pre-check is only a
	// friendlier error. Revoked rows fall outside the index, so a revoked
	// date can be approved again.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_winner_approved_per_date
		 ON free_wash_winners (draw_date) WHERE status = 'approved'`,
	).Error; err != nil {
		return err
	}

	return seed(db)
}

func seed(db *gorm.DB) error {
	promotions := []models.Promotion{
		{Code: models.PromoFeaturedVehicle, Name: "Featured vehicle of the month", IsActive: true},
		{Code: models.PromoLoyalty13th, Name: "Every 13th wash free", IsActive: true},
		{Code: models.PromoRandomFree, Name: "Random free wash", IsActive: true},
	}
	for _, promo := range promotions {
		if err := db.Where(models.Promotion{Code: promo.Code}).
			FirstOrCreate(&promo).Error; err != nil {
			return err
		}
	}

	var settings models.Settings
	return db.Where(models.Settings{ID: 1}).FirstOrCreate(&settings).Error
}
