// services/reward.go
package services

import (
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/garane84/shynne-autowash-backend/models"
	"github.com/garane84/shynne-autowash-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardInput describes a prospective wash before pricing is decided.
type RewardInput struct {
	Phone         string
	Plate         string
	CustomerName  string
	Price         float64
	CommissionPct *float64 // nil means use the configured default
	WashedAt      time.Time
}

// RewardDecision is the evaluator's verdict, consumed by the wash ledger.
// PromotionID may be nil even for a free wash when the matching promotion row
// is inactive; the free status still applies.
type RewardDecision struct {
	IsFree        bool
	Price         float64
	CommissionPct float64
	PromoCode     string
	PromotionID   *uuid.UUID
	CustomerID    *uuid.UUID
}

// RewardEvaluator decides free/paid status for a prospective wash by running
// the reward tracks in strict priority order: featured vehicle, loyalty count,
// random chance. First match wins, no stacking.
//
// The eligibility reads and the wash insert are not one transaction; under
// concurrent washes for the same customer in the same instant a double grant
// is possible. Accepted tolerance for a low-stakes promotion.
type RewardEvaluator struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewRewardEvaluator builds an evaluator. Pass a seeded rng in tests to make
// the random track deterministic; nil gets a time-seeded source.
func NewRewardEvaluator(db *gorm.DB, rng *rand.Rand) *RewardEvaluator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RewardEvaluator{db: db, rng: rng}
}

type grant struct {
	promoCode string
}

type evalContext struct {
	settings models.Settings
	input    RewardInput
	customer *models.Customer
}

type rewardPolicy struct {
	name  string
	check func(*evalContext) (*grant, error)
}

// Evaluate never fails wash creation: any error during evaluation degrades to
// a paid wash at the default commission and is logged for the operator.
func (e *RewardEvaluator) Evaluate(input RewardInput) RewardDecision {
	input.Plate = utils.NormalizePlate(input.Plate)

	settings, err := GetSettings(e.db)
	if err != nil {
		log.Printf("reward: settings lookup failed, wash stays paid: %v", err)
		return e.paidDecision(input, models.Settings{DefaultCommissionPct: 30})
	}

	paid := e.paidDecision(input, settings)

	ctx := &evalContext{settings: settings, input: input}
	if input.Phone != "" || input.Plate != "" {
		customer, err := FindOrCreateCustomer(e.db, input.Phone, input.Plate, input.CustomerName)
		if err != nil {
			log.Printf("reward: customer resolution failed, wash stays paid: %v", err)
			return paid
		}
		ctx.customer = customer
		paid.CustomerID = &customer.ID
	}

	policies := []rewardPolicy{
		{name: "featured-vehicle", check: e.featuredVehicle},
		{name: "loyalty-count", check: e.loyaltyCount},
		{name: "random-chance", check: e.randomChance},
	}

	for _, policy := range policies {
		g, err := policy.check(ctx)
		if err != nil {
			log.Printf("reward: %s check failed, wash stays paid: %v", policy.name, err)
			return paid
		}
		if g == nil {
			continue
		}

		decision := RewardDecision{
			IsFree:     true,
			PromoCode:  g.promoCode,
			CustomerID: paid.CustomerID,
		}
		promoID, err := ActivePromotionID(e.db, g.promoCode)
		if err != nil {
			log.Printf("reward: promotion lookup failed for %s: %v", g.promoCode, err)
		} else {
			decision.PromotionID = promoID
		}
		return decision
	}

	return paid
}

func (e *RewardEvaluator) paidDecision(input RewardInput, settings models.Settings) RewardDecision {
	pct := settings.DefaultCommissionPct
	if input.CommissionPct != nil {
		pct = *input.CommissionPct
	}
	return RewardDecision{Price: input.Price, CommissionPct: pct}
}

// featuredVehicle grants when the plate holds a featured entry for the wash's
// calendar month, the monthly reward is not already consumed, and the
// featured-vehicle promotion is active.
func (e *RewardEvaluator) featuredVehicle(ctx *evalContext) (*grant, error) {
	plate := ctx.input.Plate
	if plate == "" {
		return nil, nil
	}

	var featured int64
	if err := e.db.Model(&models.FeaturedVehicle{}).
		Where("plate = ? AND month = ?", plate, utils.MonthKey(ctx.input.WashedAt)).
		Count(&featured).Error; err != nil {
		return nil, err
	}
	if featured == 0 {
		return nil, nil
	}

	if ctx.settings.FeaturedFreeOncePerMonth {
		consumed, err := e.featuredRewardConsumed(plate, ctx.input.WashedAt)
		if err != nil {
			return nil, err
		}
		if consumed {
			return nil, nil
		}
	}

	promoID, err := ActivePromotionID(e.db, models.PromoFeaturedVehicle)
	if err != nil {
		return nil, err
	}
	if promoID == nil {
		return nil, nil
	}

	return &grant{promoCode: models.PromoFeaturedVehicle}, nil
}

func (e *RewardEvaluator) featuredRewardConsumed(plate string, t time.Time) (bool, error) {
	start, end := utils.MonthBounds(t)
	var count int64
	err := e.db.Model(&models.Wash{}).
		Where("plate = ? AND is_free = ? AND promo_code = ? AND washed_at >= ? AND washed_at < ?",
			plate, true, models.PromoFeaturedVehicle, start, end).
		Count(&count).Error
	return count > 0, err
}

// loyaltyCount grants every 13th wash by the same customer within a calendar
// month. The grant applies even when the loyalty promotion row is inactive;
// only the promo reference on the wash is dropped in that case.
func (e *RewardEvaluator) loyaltyCount(ctx *evalContext) (*grant, error) {
	if ctx.customer == nil {
		return nil, nil
	}

	count, err := CustomerWashCountInMonth(e.db, ctx.customer.ID, ctx.input.WashedAt)
	if err != nil {
		return nil, err
	}
	if (count+1)%13 != 0 {
		return nil, nil
	}

	return &grant{promoCode: models.PromoLoyalty13th}, nil
}

// randomChance grants by uniform draw, gated on the enable flag, the
// customer's historical visit count, and the daily cap on random free washes.
func (e *RewardEvaluator) randomChance(ctx *evalContext) (*grant, error) {
	if !ctx.settings.PromoFreeEnabled || ctx.customer == nil {
		return nil, nil
	}
	if ctx.customer.TotalVisits < ctx.settings.PromoFreeMinVisits {
		return nil, nil
	}

	if ctx.settings.PromoFreeDailyCap > 0 {
		today, err := e.countFreeRandomWashesToday(ctx.input.WashedAt)
		if err != nil {
			return nil, err
		}
		if today >= int64(ctx.settings.PromoFreeDailyCap) {
			return nil, nil
		}
	}

	if e.rng.Float64() >= ctx.settings.PromoFreeProb {
		return nil, nil
	}

	return &grant{promoCode: models.PromoRandomFree}, nil
}

func (e *RewardEvaluator) countFreeRandomWashesToday(t time.Time) (int64, error) {
	dayStart := utils.BeginningOfDay(t)
	var count int64
	err := e.db.Model(&models.Wash{}).
		Where("is_free = ? AND promo_code = ? AND washed_at >= ? AND washed_at < ?",
			true, models.PromoRandomFree, dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&count).Error
	return count, err
}

// SplitMoney computes commission and profit from price and percentage.
// Commission is rounded first and profit is the rounded remainder, so
// commission + profit == price holds exactly at currency precision.
func SplitMoney(price, commissionPct float64) (commission, profit float64) {
	commission = Round2(price * commissionPct / 100)
	profit = Round2(price - commission)
	return
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
