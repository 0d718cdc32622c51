package models

// Category is reference data describing a kind of spend (Dining, Groceries, ...).
type Category struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}
