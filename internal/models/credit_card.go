package models

// CardType is the payment network of a card.
type CardType string

const (
	CardTypeVisa       CardType = "visa"
	CardTypeMastercard CardType = "mastercard"
	CardTypeOther      CardType = "other"
)

// CatalogSource identifies the site a card listing was imported from.
type CatalogSource string

const (
	CatalogSourceSingSaver  CatalogSource = "singsaver"
	CatalogSourceMoneySmart CatalogSource = "moneysmart"
)

// CreditCard is a card product in the catalog. Fees and income are in dollars per year.
type CreditCard struct {
	Base
	Name         string        `gorm:"not null;uniqueIndex:idx_card_bank_name" json:"name"`
	Bank         string        `gorm:"not null;uniqueIndex:idx_card_bank_name" json:"bank"`
	CardType     CardType      `gorm:"not null" json:"card_type"`
	AnnualFee    float64       `gorm:"type:decimal(12,2);default:0" json:"annual_fee"`
	MinIncome    float64       `gorm:"type:decimal(14,2);default:0" json:"min_income"`
	WelcomeBonus string        `json:"welcome_bonus,omitempty"`
	ImageURL     string        `json:"image_url,omitempty"`
	Description  string        `json:"description,omitempty"`
	Source       CatalogSource `json:"source,omitempty"`
	SourceURL    string        `json:"source_url,omitempty"`
	IsActive     bool          `gorm:"not null" json:"is_active"`

	// Relationships
	CardBenefits []CardBenefit `gorm:"foreignKey:CardID" json:"card_benefits,omitempty"`
}

// CardBenefit is a card's reward rule for one category.
//
// CashbackRate is a percentage of spend. PointsRate and MilesRate are units
// earned per dollar. Cap is the most spend per month that earns the reward
// (0 means uncapped). MinSpend is the monthly spend needed before any reward applies.
type CardBenefit struct {
	Base
	CardID       string  `gorm:"type:uuid;not null;index" json:"card_id"`
	CategoryID   string  `gorm:"type:uuid;not null;index" json:"category_id"`
	CashbackRate float64 `gorm:"type:decimal(8,4);default:0" json:"cashback_rate"`
	PointsRate   float64 `gorm:"type:decimal(8,4);default:0" json:"points_rate"`
	MilesRate    float64 `gorm:"type:decimal(8,4);default:0" json:"miles_rate"`
	Cap          float64 `gorm:"type:decimal(12,2);default:0" json:"cap"`
	MinSpend     float64 `gorm:"type:decimal(12,2);default:0" json:"min_spend"`
	Description  string  `json:"description"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
