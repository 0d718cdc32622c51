package recommend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func buildReason(c *candidate, fallback bool) string {
	var b strings.Builder
	b.WriteString(rateSentence(c.estimate.RateType, c.estimate.Rate, c.category.Name))

	est := c.estimate
	switch {
	case fallback:
		b.WriteString(". Ranked on default assumptions because no spending has been recorded; add your spending for a personalised estimate")
		if !est.Qualifies {
			fmt.Fprintf(&b, ". Needs $%s of monthly spend to qualify", money(c.offer.Benefit.MinSpend))
		}
	case !est.Qualifies:
		fmt.Fprintf(&b, ". Spend $%s more to qualify (minimum $%s a month)",
			est.Shortfall.StringFixed(2), money(c.offer.Benefit.MinSpend))
	default:
		fmt.Fprintf(&b, ", about $%s a month on your $%s %s spend",
			est.Reward.StringFixed(2), money(c.spend), strings.ToLower(c.category.Name))
		if est.CapApplied {
			fmt.Fprintf(&b, " (capped at $%s of spend)", money(c.offer.Benefit.Cap))
		}
	}

	fee := decimal.NewFromFloat(c.offer.Card.AnnualFee)
	if fee.IsPositive() {
		fmt.Fprintf(&b, ". Annual fee $%s (about $%s a month)",
			fee.StringFixed(2), fee.Div(decimal.NewFromInt(12)).StringFixed(2))
	} else {
		b.WriteString(". No annual fee")
	}
	b.WriteString(".")
	return b.String()
}

func rateSentence(rt RateType, rate float64, category string) string {
	r := strconv.FormatFloat(rate, 'f', -1, 64)
	switch rt {
	case RateCashback:
		return fmt.Sprintf("%s%% cashback on %s", r, category)
	case RateMiles:
		return fmt.Sprintf("%s miles per dollar on %s", r, category)
	case RatePoints:
		return fmt.Sprintf("%s points per dollar on %s", r, category)
	}
	return fmt.Sprintf("No bonus rate on %s", category)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
