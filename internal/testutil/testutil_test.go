package testutil_test

import (
	"testing"

	"gotocard/internal/errors"
	"gotocard/internal/models"
	"gotocard/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "categories", "credit_cards", "card_benefits", "user_spendings", "recommendations"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected an empty second database, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	income := 48000.0
	user := testutil.CreateTestUserWithIncome(t, db, &income)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	category := testutil.CreateTestCategory(t, db)
	card := testutil.CreateTestCard(t, db, 120, 30000)
	if !card.IsActive {
		t.Error("expected card to be active")
	}

	benefit := testutil.CreateTestBenefit(t, db, card.ID, category.ID, models.CardBenefit{CashbackRate: 5, Cap: 300})
	if benefit.CardID != card.ID || benefit.CashbackRate != 5 {
		t.Errorf("unexpected benefit %+v", benefit)
	}

	spend := testutil.CreateTestSpending(t, db, user.ID, category.ID, 250, 6, 2025)
	if spend.Amount != 250 || spend.Month != 6 {
		t.Errorf("unexpected spending %+v", spend)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrCardNotFound, "custom message")
	testutil.AssertAppError(t, err, "CARD_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
