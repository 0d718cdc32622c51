package recommend

import (
	"gotocard/internal/models"
)

var (
	dining    = models.Category{Base: models.Base{ID: "cat-dining"}, Name: "Dining", Icon: "utensils"}
	groceries = models.Category{Base: models.Base{ID: "cat-groceries"}, Name: "Groceries", Icon: "cart"}
	travel    = models.Category{Base: models.Base{ID: "cat-travel"}, Name: "Travel", Icon: "plane"}
)

func newCard(id string, fee, minIncome float64, benefits ...models.CardBenefit) models.CreditCard {
	for i := range benefits {
		benefits[i].CardID = id
		if benefits[i].ID == "" {
			benefits[i].ID = id + "-" + benefits[i].CategoryID
		}
	}
	return models.CreditCard{
		Base:         models.Base{ID: id},
		Name:         "Card " + id,
		Bank:         "Bank",
		CardType:     models.CardTypeVisa,
		AnnualFee:    fee,
		MinIncome:    minIncome,
		IsActive:     true,
		CardBenefits: benefits,
	}
}

func cashback(cat models.Category, rate float64) models.CardBenefit {
	return models.CardBenefit{CategoryID: cat.ID, Category: cat, CashbackRate: rate}
}

func spendRecord(id string, cat models.Category, amount float64, month, year int) models.UserSpending {
	return models.UserSpending{
		Base:       models.Base{ID: id},
		UserID:     "user-1",
		CategoryID: cat.ID,
		Amount:     amount,
		Month:      month,
		Year:       year,
	}
}

func income(v float64) *float64 { return &v }
