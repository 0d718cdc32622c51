package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gotocard/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a unique email and no declared income.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithIncome(t, db, nil)
}

// CreateTestUserWithIncome creates a user with the given annual income (nil for undisclosed).
func CreateTestUserWithIncome(t *testing.T, db *gorm.DB, income *float64) *models.User {
	t.Helper()

	n := nextID()
	user := &models.User{
		Email:        fmt.Sprintf("user%d@test.com", n),
		Name:         fmt.Sprintf("Test User %d", n),
		AnnualIncome: income,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryNamed creates a category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, Icon: "tag"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestCard creates an active visa card with the given fee and income requirement.
func CreateTestCard(t *testing.T, db *gorm.DB, annualFee, minIncome float64) *models.CreditCard {
	t.Helper()

	n := nextID()
	card := &models.CreditCard{
		Name:      fmt.Sprintf("Test Card %d", n),
		Bank:      "Test Bank",
		CardType:  models.CardTypeVisa,
		AnnualFee: annualFee,
		MinIncome: minIncome,
		Source:    models.CatalogSourceSingSaver,
		IsActive:  true,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

// CreateTestBenefit attaches a benefit to a card. Rates, cap and min spend come from b.
func CreateTestBenefit(t *testing.T, db *gorm.DB, cardID, categoryID string, b models.CardBenefit) *models.CardBenefit {
	t.Helper()

	b.CardID = cardID
	b.CategoryID = categoryID
	if err := db.Omit("Category").Create(&b).Error; err != nil {
		t.Fatalf("failed to create test benefit: %v", err)
	}
	return &b
}

// CreateTestSpending records spend for a user in a category and month.
func CreateTestSpending(t *testing.T, db *gorm.DB, userID, categoryID string, amount float64, month, year int) *models.UserSpending {
	t.Helper()

	s := &models.UserSpending{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Month:      month,
		Year:       year,
	}
	if err := db.Omit("Category").Create(s).Error; err != nil {
		t.Fatalf("failed to create test spending: %v", err)
	}
	return s
}
