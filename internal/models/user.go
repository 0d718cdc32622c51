package models

// User is a person whose spending drives recommendations.
// AnnualIncome is optional; when nil the income gate is not applied.
type User struct {
	Base
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"not null" json:"name"`
	AnnualIncome *float64       `gorm:"type:decimal(14,2)" json:"annual_income,omitempty"`
	Spendings    []UserSpending `gorm:"foreignKey:UserID" json:"-"`
}
