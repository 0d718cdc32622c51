package services

import (
	"errors"
	"math"

	"gorm.io/gorm"

	apperrors "gotocard/internal/errors"
	"gotocard/internal/logger"
	"gotocard/internal/models"
	"gotocard/internal/recommend"
)

// spendingService handles a user's monthly spend entries.
type spendingService struct {
	db *gorm.DB
}

// NewSpendingService creates a new SpendingServicer.
func NewSpendingService(db *gorm.DB) SpendingServicer {
	return &spendingService{db: db}
}

// AddSpending records spend for a user in a category and month. Several
// entries for the same month are allowed and are summed when aggregated.
func (s *spendingService) AddSpending(userID, categoryID string, amount float64, month, year int) (*models.UserSpending, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a non-negative number")
	}
	if month < 1 || month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if year < recommend.MinYear || year > recommend.MaxYear {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "year must be a four digit year from 2000")
	}

	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}
	var category models.Category
	if err := s.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spending := &models.UserSpending{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Month:      month,
		Year:       year,
	}
	if err := s.db.Omit("Category").Create(spending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	spending.Category = category
	return spending, nil
}

// ListSpending returns a user's records, newest month first.
func (s *spendingService) ListSpending(userID string, filter SpendingFilter) ([]models.UserSpending, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	query := s.db.Preload("Category").Where("user_id = ?", userID)
	if filter.Month != nil {
		query = query.Where("month = ? AND year = ?", *filter.Month, *filter.Year)
	}

	var records []models.UserSpending
	if err := query.Order("year DESC, month DESC, created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if records == nil {
		records = []models.UserSpending{}
	}
	return records, nil
}

// DeleteSpending removes one of the user's records.
func (s *spendingService) DeleteSpending(userID, spendingID string) error {
	result := s.db.Where("id = ? AND user_id = ?", spendingID, userID).Delete(&models.UserSpending{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSpendingNotFound
	}
	return nil
}

// Summary aggregates the user's records into the profile the engine ranks against.
func (s *spendingService) Summary(userID string, filter SpendingFilter) (*recommend.Profile, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	var records []models.UserSpending
	if err := s.db.Where("user_id = ?", userID).Order("year ASC, month ASC, id ASC").Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var window *recommend.Period
	if filter.Month != nil {
		window = &recommend.Period{Year: *filter.Year, Month: *filter.Month}
	}
	profile := recommend.Aggregate(records, window)
	logSkipped(userID, profile.Skipped)
	return &profile, nil
}

func (s *spendingService) ensureUser(userID string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func validateFilter(f SpendingFilter) error {
	if (f.Month == nil) != (f.Year == nil) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month and year must be given together")
	}
	if f.Month == nil {
		return nil
	}
	if *f.Month < 1 || *f.Month > 12 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if *f.Year < recommend.MinYear || *f.Year > recommend.MaxYear {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "year must be a four digit year from 2000")
	}
	return nil
}

func logSkipped(userID string, skipped []recommend.SkippedRecord) {
	for _, rec := range skipped {
		logger.Get().Warnw("Skipping malformed spending record",
			"user_id", userID,
			"spending_id", rec.SpendingID,
			"reason", rec.Reason,
		)
	}
}
