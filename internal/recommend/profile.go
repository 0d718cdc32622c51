package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"gotocard/internal/models"
)

// Accepted range for spending record years.
const (
	MinYear = 2000
	MaxYear = 9999
)

// Period is a calendar month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (p Period) after(o Period) bool {
	if p.Year != o.Year {
		return p.Year > o.Year
	}
	return p.Month > o.Month
}

// CategoryTotal is the aggregated spend of one category.
type CategoryTotal struct {
	CategoryID       string  `json:"category_id"`
	Amount           float64 `json:"amount"`
	TransactionCount int     `json:"transaction_count"`
	Period           Period  `json:"period"`
	PeriodsTouched   int     `json:"periods_touched"`
}

// SkippedRecord is a spending record rejected by the aggregator.
type SkippedRecord struct {
	SpendingID string `json:"spending_id"`
	Reason     string `json:"reason"`
}

// Profile is a user's monthly spend per category.
//
// Amount is the sum of the records in the selected period: the latest month
// seen for that category, or the month requested by the caller. PeriodsTouched
// and PeriodCount count distinct months across all valid records so a single
// large purchase can be told apart from a recurring pattern.
type Profile struct {
	Categories  map[string]CategoryTotal `json:"categories"`
	TotalSpend  float64                  `json:"total_spend"`
	PeriodCount int                      `json:"period_count"`
	Skipped     []SkippedRecord          `json:"skipped,omitempty"`
}

// IsEmpty reports whether the profile carries no spending signal: no
// categories, or only categories whose recorded spend is zero.
func (p Profile) IsEmpty() bool {
	for _, c := range p.Categories {
		if c.Amount > 0 {
			return false
		}
	}
	return true
}

// CategoryIDs returns the profile's category ids, sorted.
func (p Profile) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for id := range p.Categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Aggregate reduces spending records to a Profile. When window is nil each
// category uses its most recent month; otherwise only records in window count
// toward Amount. Malformed records are skipped and reported in Profile.Skipped.
func Aggregate(records []models.UserSpending, window *Period) Profile {
	type acc struct {
		latest  Period
		amount  decimal.Decimal
		count   int
		periods map[Period]struct{}
	}

	profile := Profile{Categories: make(map[string]CategoryTotal)}
	groups := make(map[string]*acc)
	allPeriods := make(map[Period]struct{})

	valid := make([]models.UserSpending, 0, len(records))
	for _, r := range records {
		if reason := validateRecord(r); reason != "" {
			profile.Skipped = append(profile.Skipped, SkippedRecord{SpendingID: r.ID, Reason: reason})
			continue
		}
		valid = append(valid, r)

		p := Period{Year: r.Year, Month: r.Month}
		allPeriods[p] = struct{}{}
		g, ok := groups[r.CategoryID]
		if !ok {
			g = &acc{periods: make(map[Period]struct{})}
			groups[r.CategoryID] = g
		}
		g.periods[p] = struct{}{}
		if !ok || p.after(g.latest) {
			g.latest = p
		}
	}

	for _, r := range valid {
		g := groups[r.CategoryID]
		p := Period{Year: r.Year, Month: r.Month}
		target := g.latest
		if window != nil {
			target = *window
		}
		if p != target {
			continue
		}
		g.amount = g.amount.Add(decimal.NewFromFloat(r.Amount))
		g.count++
	}

	total := decimal.Zero
	for id, g := range groups {
		if g.count == 0 {
			continue
		}
		period := g.latest
		if window != nil {
			period = *window
		}
		profile.Categories[id] = CategoryTotal{
			CategoryID:       id,
			Amount:           g.amount.Round(2).InexactFloat64(),
			TransactionCount: g.count,
			Period:           period,
			PeriodsTouched:   len(g.periods),
		}
		total = total.Add(g.amount)
	}
	profile.TotalSpend = total.Round(2).InexactFloat64()
	profile.PeriodCount = len(allPeriods)
	return profile
}

func validateRecord(r models.UserSpending) string {
	switch {
	case r.CategoryID == "":
		return "missing category"
	case math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0):
		return "amount is not a number"
	case r.Amount < 0:
		return fmt.Sprintf("negative amount %.2f", r.Amount)
	case r.Month < 1 || r.Month > 12:
		return fmt.Sprintf("month %d out of range", r.Month)
	case r.Year < MinYear || r.Year > MaxYear:
		return fmt.Sprintf("year %d out of range", r.Year)
	}
	return ""
}
