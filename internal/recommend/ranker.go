package recommend

import (
	"sort"

	"github.com/shopspring/decimal"

	"gotocard/internal/models"
)

// Status describes the outcome of a ranking run.
type Status string

const (
	StatusOK              Status = "ok"
	StatusNoEligibleCards Status = "no_eligible_cards"
)

// Score bands. Cards that lose money after fees land in [0, lowBandTop].
const (
	lowBandTop = 20
	maxScore   = 100
)

// CardSummary is the card as shown alongside a recommendation.
type CardSummary struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Bank         string          `json:"bank"`
	CardType     models.CardType `json:"card_type"`
	AnnualFee    float64         `json:"annual_fee"`
	MinIncome    float64         `json:"min_income"`
	WelcomeBonus string          `json:"welcome_bonus,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
}

// CategorySummary is the category as shown alongside a recommendation.
type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Recommendation is one ranked (card, category) suggestion.
type Recommendation struct {
	Rank            int             `json:"rank"`
	Card            CardSummary     `json:"card"`
	Category        CategorySummary `json:"category"`
	Score           int             `json:"score"`
	EstimatedReward float64         `json:"estimated_reward"`
	RateType        RateType        `json:"rate_type"`
	Reason          string          `json:"reason"`
}

// Input is everything one ranking run needs.
type Input struct {
	// AnnualIncome is nil when the user has not disclosed it.
	AnnualIncome *float64
	Cards        []models.CreditCard
	Profile      Profile
}

// Result is the ranked output of an engine run.
type Result struct {
	Status          Status           `json:"status"`
	Recommendations []Recommendation `json:"recommendations"`
	Candidates      int              `json:"-"`
	Excluded        int              `json:"-"`
	Fallback        bool             `json:"-"`
}

// Engine ranks cards for a spending profile.
type Engine struct {
	cfg       Config
	estimator *Estimator
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, estimator: NewEstimator(cfg)}
}

type candidate struct {
	offer    Offer
	category models.Category
	spend    float64
	estimate Estimate
	net      decimal.Decimal
	unit     decimal.Decimal
	score    int
}

// Rank evaluates every eligible (card, category) pair and returns them ordered
// best first. With an empty profile every benefit is evaluated at zero spend
// and the ordering favours low fees and high advertised rates instead.
func (e *Engine) Rank(in Input) Result {
	catalog := NewCatalog(in.Cards)
	fallback := in.Profile.IsEmpty()

	categoryIDs := in.Profile.CategoryIDs()
	if fallback {
		categoryIDs = catalog.CategoryIDs()
	}

	var (
		cands    []*candidate
		seen     int
		excluded int
	)
	for _, catID := range categoryIDs {
		spend := 0.0
		if !fallback {
			spend = in.Profile.Categories[catID].Amount
		}

		best := make(map[string]*candidate)
		for _, offer := range catalog.ForCategory(catID) {
			seen++
			if !incomeEligible(in.AnnualIncome, offer.Card) {
				excluded++
				continue
			}
			c := e.evaluate(offer, spend)
			if prev, ok := best[offer.Card.ID]; !ok || betterBenefit(c, prev) {
				best[offer.Card.ID] = c
			}
		}
		for _, c := range best {
			c.category = categoryFor(catalog, c.offer, catID)
			cands = append(cands, c)
		}
	}

	result := Result{
		Status:          StatusOK,
		Recommendations: []Recommendation{},
		Candidates:      seen,
		Excluded:        excluded,
		Fallback:        fallback,
	}
	if seen > 0 && excluded == seen {
		result.Status = StatusNoEligibleCards
		return result
	}

	assignScores(cands)
	sort.Slice(cands, func(i, j int) bool { return less(cands[i], cands[j], fallback) })

	limit := len(cands)
	if e.cfg.Limit > 0 && e.cfg.Limit < limit {
		limit = e.cfg.Limit
	}
	for i, c := range cands[:limit] {
		result.Recommendations = append(result.Recommendations, Recommendation{
			Rank:            i + 1,
			Card:            summarizeCard(c.offer.Card),
			Category:        CategorySummary{ID: c.category.ID, Name: c.category.Name, Icon: c.category.Icon},
			Score:           c.score,
			EstimatedReward: c.estimate.Reward.InexactFloat64(),
			RateType:        c.estimate.RateType,
			Reason:          buildReason(c, fallback),
		})
	}
	return result
}

func (e *Engine) evaluate(offer Offer, spend float64) *candidate {
	est := e.estimator.Estimate(offer.Benefit, spend)
	monthlyFee := decimal.NewFromFloat(offer.Card.AnnualFee).Div(decimal.NewFromInt(12))
	return &candidate{
		offer:    offer,
		spend:    spend,
		estimate: est,
		net:      est.Reward.Sub(monthlyFee),
		unit:     e.estimator.UnitValue(est.RateType, est.Rate),
	}
}

// incomeEligible applies the card's minimum income. Unknown income is not gated.
func incomeEligible(income *float64, card *models.CreditCard) bool {
	if income == nil || card.MinIncome <= 0 {
		return true
	}
	return *income >= card.MinIncome
}

// betterBenefit picks between two benefits of the same card in one category.
func betterBenefit(a, b *candidate) bool {
	if !a.estimate.Reward.Equal(b.estimate.Reward) {
		return a.estimate.Reward.GreaterThan(b.estimate.Reward)
	}
	if !a.unit.Equal(b.unit) {
		return a.unit.GreaterThan(b.unit)
	}
	return a.offer.Benefit.ID < b.offer.Benefit.ID
}

func categoryFor(catalog *Catalog, offer Offer, id string) models.Category {
	if offer.Benefit.Category.ID != "" {
		return offer.Benefit.Category
	}
	if cat, ok := catalog.Category(id); ok {
		return cat
	}
	return models.Category{Base: models.Base{ID: id}}
}

// assignScores maps net values onto 0..100. Positive nets scale against the
// best positive net into (lowBandTop, maxScore]; zero scores lowBandTop; negative
// nets scale against the worst net into [0, lowBandTop).
func assignScores(cands []*candidate) {
	ceiling, floor := decimal.Zero, decimal.Zero
	for _, c := range cands {
		if c.net.GreaterThan(ceiling) {
			ceiling = c.net
		}
		if c.net.LessThan(floor) {
			floor = c.net
		}
	}

	band := decimal.NewFromInt(lowBandTop)
	span := decimal.NewFromInt(maxScore - lowBandTop)
	for _, c := range cands {
		var s decimal.Decimal
		switch {
		case c.net.IsPositive():
			s = band.Add(span.Mul(c.net).Div(ceiling))
		case c.net.IsNegative():
			s = band.Mul(decimal.NewFromInt(1).Sub(c.net.Div(floor)))
		default:
			s = band
		}
		c.score = clampScore(int(s.Round(0).IntPart()))
	}
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > maxScore {
		return maxScore
	}
	return s
}

func less(a, b *candidate, fallback bool) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.offer.Card.AnnualFee != b.offer.Card.AnnualFee {
		return a.offer.Card.AnnualFee < b.offer.Card.AnnualFee
	}
	if !a.estimate.Reward.Equal(b.estimate.Reward) {
		return a.estimate.Reward.GreaterThan(b.estimate.Reward)
	}
	if fallback && !a.unit.Equal(b.unit) {
		return a.unit.GreaterThan(b.unit)
	}
	if a.offer.Card.ID != b.offer.Card.ID {
		return a.offer.Card.ID < b.offer.Card.ID
	}
	return a.category.ID < b.category.ID
}

func summarizeCard(c *models.CreditCard) CardSummary {
	return CardSummary{
		ID:           c.ID,
		Name:         c.Name,
		Bank:         c.Bank,
		CardType:     c.CardType,
		AnnualFee:    c.AnnualFee,
		MinIncome:    c.MinIncome,
		WelcomeBonus: c.WelcomeBonus,
		ImageURL:     c.ImageURL,
	}
}
