package models

// UserSpending is one spend entry for a user in a category and calendar month.
// Several entries may share the same (user, category, month, year).
type UserSpending struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string  `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount     float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	Month      int     `gorm:"not null" json:"month"`
	Year       int     `gorm:"not null" json:"year"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}

// TableName pins the table name used by the SQL migrations.
func (UserSpending) TableName() string { return "user_spendings" }
