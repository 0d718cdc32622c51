// Package recommend matches a user's spending against card benefit rules and
// produces ranked, explained card recommendations. Everything in this package
// is a pure function of its inputs; loading and storing data is the caller's job.
package recommend

import (
	"sort"

	"gotocard/internal/models"
)

// Offer is an active card paired with its benefit for one category.
type Offer struct {
	Card    *models.CreditCard
	Benefit models.CardBenefit
}

// Catalog indexes card benefits by category and by card.
type Catalog struct {
	byCategory map[string][]Offer
	byCard     map[string][]models.CardBenefit
	categories map[string]models.Category
}

// NewCatalog builds a catalog from cards with their benefits (and each
// benefit's category) loaded. Inactive cards keep their benefit list but never
// appear in category lookups.
func NewCatalog(cards []models.CreditCard) *Catalog {
	c := &Catalog{
		byCategory: make(map[string][]Offer),
		byCard:     make(map[string][]models.CardBenefit),
		categories: make(map[string]models.Category),
	}

	for i := range cards {
		card := &cards[i]
		benefits := append([]models.CardBenefit(nil), card.CardBenefits...)
		sort.Slice(benefits, func(a, b int) bool { return benefits[a].ID < benefits[b].ID })
		c.byCard[card.ID] = benefits

		if !card.IsActive {
			continue
		}
		for _, b := range benefits {
			c.byCategory[b.CategoryID] = append(c.byCategory[b.CategoryID], Offer{Card: card, Benefit: b})
			if _, ok := c.categories[b.CategoryID]; !ok || c.categories[b.CategoryID].ID == "" {
				cat := b.Category
				if cat.ID == "" {
					cat.ID = b.CategoryID
				}
				c.categories[b.CategoryID] = cat
			}
		}
	}

	for id := range c.byCategory {
		offers := c.byCategory[id]
		sort.Slice(offers, func(a, b int) bool {
			if offers[a].Card.ID != offers[b].Card.ID {
				return offers[a].Card.ID < offers[b].Card.ID
			}
			return offers[a].Benefit.ID < offers[b].Benefit.ID
		})
	}
	return c
}

// ForCategory returns the active offers for a category ordered by card id.
// An unknown category yields an empty result.
func (c *Catalog) ForCategory(categoryID string) []Offer {
	return c.byCategory[categoryID]
}

// ForCard returns every benefit of a card. An unknown card yields an empty result.
func (c *Catalog) ForCard(cardID string) []models.CardBenefit {
	return c.byCard[cardID]
}

// Category returns the category referenced by an active offer, if any.
func (c *Catalog) Category(id string) (models.Category, bool) {
	cat, ok := c.categories[id]
	return cat, ok
}

// CategoryIDs returns the ids of all categories with at least one active offer, sorted.
func (c *Catalog) CategoryIDs() []string {
	ids := make([]string, 0, len(c.byCategory))
	for id := range c.byCategory {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
