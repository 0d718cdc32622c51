package models

import (
	"time"

	"gotocard/internal/uuid"

	"gorm.io/gorm"
)

// Recommendation is one stored row of a user's latest ranked list.
// Rows are derived data: every generation replaces the user's whole set,
// so there is no Base embed and no soft delete. The card and category
// columns hold the values the row was ranked with.
type Recommendation struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;not null;index:idx_rec_user_rank,priority:1" json:"user_id"`
	Rank            int       `gorm:"not null;index:idx_rec_user_rank,priority:2" json:"rank"`
	CardID          string    `gorm:"type:uuid;not null" json:"card_id"`
	CategoryID      string    `gorm:"type:uuid;not null" json:"category_id"`
	Score           int       `gorm:"not null" json:"score"`
	EstimatedReward float64   `gorm:"type:decimal(12,2);not null" json:"estimated_reward"`
	RateType        string    `gorm:"not null" json:"rate_type"`
	Reason          string    `gorm:"not null" json:"reason"`
	GeneratedAt     time.Time `gorm:"not null" json:"generated_at"`

	// Snapshot
	CardName         string   `gorm:"not null;default:''" json:"card_name"`
	CardBank         string   `gorm:"not null;default:''" json:"card_bank"`
	CardType         CardType `gorm:"not null;default:'other'" json:"card_type"`
	CardAnnualFee    float64  `gorm:"type:decimal(12,2);not null;default:0" json:"card_annual_fee"`
	CardMinIncome    float64  `gorm:"type:decimal(14,2);not null;default:0" json:"card_min_income"`
	CardWelcomeBonus string   `json:"card_welcome_bonus,omitempty"`
	CardImageURL     string   `json:"card_image_url,omitempty"`
	CategoryName     string   `gorm:"not null;default:''" json:"category_name"`
	CategoryIcon     string   `json:"category_icon,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (r *Recommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New()
	}
	return nil
}
