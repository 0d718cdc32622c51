package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "gotocard/internal/errors"
	"gotocard/internal/models"
	"gotocard/internal/recommend"
)

// RecommendationStore is the persistence the recommendation service depends on.
// Implementations report connectivity problems as retryable AppErrors.
type RecommendationStore interface {
	LoadUser(ctx context.Context, userID string) (*models.User, error)
	LoadActiveCards(ctx context.Context) ([]models.CreditCard, error)
	LoadSpending(ctx context.Context, userID string) ([]models.UserSpending, error)
	ReplaceRecommendations(ctx context.Context, userID string, recs []recommend.Recommendation, generatedAt time.Time) error
	ListRecommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error)
}

type gormRecommendationStore struct {
	db *gorm.DB
}

// NewRecommendationStore returns a RecommendationStore backed by gorm.
func NewRecommendationStore(db *gorm.DB) RecommendationStore {
	return &gormRecommendationStore{db: db}
}

func (s *gormRecommendationStore) LoadUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storeError(err)
	}
	return &user, nil
}

func (s *gormRecommendationStore) LoadActiveCards(ctx context.Context) ([]models.CreditCard, error) {
	var cards []models.CreditCard
	err := s.db.WithContext(ctx).
		Preload("CardBenefits.Category").
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&cards).Error
	if err != nil {
		return nil, storeError(err)
	}
	return cards, nil
}

func (s *gormRecommendationStore) LoadSpending(ctx context.Context, userID string) ([]models.UserSpending, error) {
	var records []models.UserSpending
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("year ASC, month ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, storeError(err)
	}
	return records, nil
}

// ReplaceRecommendations swaps the user's stored list in one transaction, so
// readers see either the previous list or the new one.
func (s *gormRecommendationStore) ReplaceRecommendations(ctx context.Context, userID string, recs []recommend.Recommendation, generatedAt time.Time) error {
	rows := make([]models.Recommendation, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, models.Recommendation{
			UserID:          userID,
			Rank:            r.Rank,
			CardID:          r.Card.ID,
			CategoryID:      r.Category.ID,
			Score:           r.Score,
			EstimatedReward: r.EstimatedReward,
			RateType:        string(r.RateType),
			Reason:          r.Reason,
			GeneratedAt:     generatedAt,

			CardName:         r.Card.Name,
			CardBank:         r.Card.Bank,
			CardType:         r.Card.CardType,
			CardAnnualFee:    r.Card.AnnualFee,
			CardMinIncome:    r.Card.MinIncome,
			CardWelcomeBonus: r.Card.WelcomeBonus,
			CardImageURL:     r.Card.ImageURL,
			CategoryName:     r.Category.Name,
			CategoryIcon:     r.Category.Icon,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Recommendation{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return storeError(err)
	}
	return nil
}

// ListRecommendations returns the stored list as it was ranked. Later catalog
// edits show up after the next generate.
func (s *gormRecommendationStore) ListRecommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error) {
	var rows []models.Recommendation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("rank ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeError(err)
	}

	out := make([]recommend.Recommendation, 0, len(rows))
	for _, row := range rows {
		out = append(out, recommend.Recommendation{
			Rank: row.Rank,
			Card: recommend.CardSummary{
				ID:           row.CardID,
				Name:         row.CardName,
				Bank:         row.CardBank,
				CardType:     row.CardType,
				AnnualFee:    row.CardAnnualFee,
				MinIncome:    row.CardMinIncome,
				WelcomeBonus: row.CardWelcomeBonus,
				ImageURL:     row.CardImageURL,
			},
			Category: recommend.CategorySummary{
				ID:   row.CategoryID,
				Name: row.CategoryName,
				Icon: row.CategoryIcon,
			},
			Score:           row.Score,
			EstimatedReward: row.EstimatedReward,
			RateType:        recommend.RateType(row.RateType),
			Reason:          row.Reason,
		})
	}
	return out, nil
}

// storeError passes context errors through and marks everything else as a
// transient storage failure.
func storeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrTransientIO, err)
}
