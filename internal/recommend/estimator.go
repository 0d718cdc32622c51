package recommend

import (
	"github.com/shopspring/decimal"

	"gotocard/internal/models"
)

// RateType identifies how a benefit pays out.
type RateType string

const (
	RateCashback RateType = "cashback"
	RateMiles    RateType = "miles"
	RatePoints   RateType = "points"
	RateNone     RateType = "none"
)

// RatePrecedence decides which rate a benefit is valued by when it carries
// more than one: the first nonzero rate in this order wins.
var RatePrecedence = []RateType{RateCashback, RateMiles, RatePoints}

// Config holds the monetary assumptions used to value non-cash rewards.
type Config struct {
	// PointValue is the dollar value of one reward point.
	PointValue float64
	// MileValue is the dollar value of one air mile.
	MileValue float64
	// Limit caps the number of ranked recommendations. Zero means no limit.
	Limit int
}

// DefaultConfig returns the values used when nothing is configured.
func DefaultConfig() Config {
	return Config{PointValue: 0.01, MileValue: 0.015, Limit: 10}
}

// Estimate is the monthly reward of one benefit at one spend level.
type Estimate struct {
	Reward        decimal.Decimal
	RateType      RateType
	Rate          float64
	Qualifies     bool
	CapApplied    bool
	RewardedSpend decimal.Decimal
	// Shortfall is how much more spend the minimum requires. Zero when Qualifies.
	Shortfall decimal.Decimal
}

// Estimator values benefits. It has no state beyond its configuration.
type Estimator struct {
	pointValue decimal.Decimal
	mileValue  decimal.Decimal
}

// NewEstimator creates an estimator. Negative values are treated as zero.
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{
		pointValue: nonNegative(decimal.NewFromFloat(cfg.PointValue)),
		mileValue:  nonNegative(decimal.NewFromFloat(cfg.MileValue)),
	}
}

// DominantRate returns the rate the benefit is valued by.
func DominantRate(b models.CardBenefit) (RateType, float64) {
	for _, rt := range RatePrecedence {
		if r := rateOf(b, rt); r > 0 {
			return rt, r
		}
	}
	return RateNone, 0
}

// Estimate computes the monthly reward for spend on benefit b.
func (e *Estimator) Estimate(b models.CardBenefit, spend float64) Estimate {
	rt, rate := DominantRate(b)
	out := Estimate{
		Reward:        decimal.Zero,
		RateType:      rt,
		Rate:          rate,
		Qualifies:     true,
		RewardedSpend: decimal.Zero,
		Shortfall:     decimal.Zero,
	}

	s := nonNegative(decimal.NewFromFloat(spend))
	minSpend := nonNegative(decimal.NewFromFloat(b.MinSpend))
	if s.LessThan(minSpend) {
		out.Qualifies = false
		out.Shortfall = minSpend.Sub(s).Round(2)
		return out
	}

	if b.Cap > 0 {
		limit := decimal.NewFromFloat(b.Cap)
		if s.GreaterThan(limit) {
			s = limit
			out.CapApplied = true
		}
	}
	out.RewardedSpend = s
	out.Reward = s.Mul(e.UnitValue(rt, rate)).Round(2)
	return out
}

// UnitValue is the dollar reward per dollar spent at the given rate.
func (e *Estimator) UnitValue(rt RateType, rate float64) decimal.Decimal {
	r := nonNegative(decimal.NewFromFloat(rate))
	switch rt {
	case RateCashback:
		return r.Div(decimal.NewFromInt(100))
	case RateMiles:
		return r.Mul(e.mileValue)
	case RatePoints:
		return r.Mul(e.pointValue)
	}
	return decimal.Zero
}

func rateOf(b models.CardBenefit, rt RateType) float64 {
	switch rt {
	case RateCashback:
		return b.CashbackRate
	case RateMiles:
		return b.MilesRate
	case RatePoints:
		return b.PointsRate
	}
	return 0
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
