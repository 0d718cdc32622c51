package services

import (
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"

	apperrors "gotocard/internal/errors"
	"gotocard/internal/logger"
	"gotocard/internal/models"
	"gotocard/internal/pagination"
)

// cardService handles the card catalog.
type cardService struct {
	db *gorm.DB
}

// NewCardService creates a new CardServicer.
func NewCardService(db *gorm.DB) CardServicer {
	return &cardService{db: db}
}

// ListCards returns active cards with their benefits, optionally filtered by bank.
func (s *cardService) ListCards(page pagination.PageRequest, bank string) (*pagination.PageResponse[models.CreditCard], error) {
	page.Defaults()

	base := s.db.Model(&models.CreditCard{}).Where("is_active = ?", true)
	if bank = strings.TrimSpace(bank); bank != "" {
		base = base.Where("LOWER(bank) = ?", strings.ToLower(bank))
	}
	base = base.Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cards []models.CreditCard
	if err := base.Preload("CardBenefits.Category").
		Order("bank ASC, name ASC").
		Scopes(pagination.Paginate(page)).
		Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cards, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCardByID retrieves a card, active or not, with its benefits.
func (s *cardService) GetCardByID(id string) (*models.CreditCard, error) {
	var card models.CreditCard
	if err := s.db.Preload("CardBenefits.Category").Where("id = ?", id).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// ImportCard upserts a card by (bank, name) and replaces its benefit list.
// The card and its benefits change together or not at all.
func (s *cardService) ImportCard(in CardImport) (*models.CreditCard, bool, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Bank = strings.TrimSpace(in.Bank)
	if err := validateImport(in); err != nil {
		return nil, false, err
	}

	var (
		cardID  string
		created bool
		revived bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkCategories(tx, in.Benefits); err != nil {
			return err
		}

		// Soft-deleted cards still hold their (bank, name) in the unique index.
		var card models.CreditCard
		err := tx.Unscoped().Where("bank = ? AND name = ?", in.Bank, in.Name).First(&card).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			card = models.CreditCard{Name: in.Name, Bank: in.Bank}
			applyImport(&card, in)
			if err := tx.Omit("CardBenefits").Create(&card).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			created = true
		case err != nil:
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		default:
			revived = card.DeletedAt.Valid
			card.DeletedAt = gorm.DeletedAt{}
			applyImport(&card, in)
			if err := tx.Unscoped().Omit("CardBenefits").Save(&card).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		cardID = card.ID

		if err := tx.Unscoped().Where("card_id = ?", card.ID).Delete(&models.CardBenefit{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, b := range in.Benefits {
			benefit := models.CardBenefit{
				CardID:       card.ID,
				CategoryID:   b.CategoryID,
				CashbackRate: b.CashbackRate,
				PointsRate:   b.PointsRate,
				MilesRate:    b.MilesRate,
				Cap:          b.Cap,
				MinSpend:     b.MinSpend,
				Description:  b.Description,
			}
			if err := tx.Omit("Category").Create(&benefit).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, false, appErr
		}
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("Imported card",
		"card_id", cardID,
		"bank", in.Bank,
		"name", in.Name,
		"source", in.Source,
		"benefits", len(in.Benefits),
		"created", created,
		"revived", revived,
	)

	card, err := s.GetCardByID(cardID)
	if err != nil {
		return nil, false, err
	}
	return card, created, nil
}

func applyImport(card *models.CreditCard, in CardImport) {
	card.CardType = in.CardType
	if card.CardType == "" {
		card.CardType = models.CardTypeOther
	}
	card.AnnualFee = in.AnnualFee
	card.MinIncome = in.MinIncome
	card.WelcomeBonus = in.WelcomeBonus
	card.ImageURL = in.ImageURL
	card.Description = in.Description
	card.Source = in.Source
	card.SourceURL = in.SourceURL
	card.IsActive = in.IsActive
}

func validateImport(in CardImport) error {
	if in.Name == "" || in.Bank == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "card name and bank are required")
	}
	if !nonNegative(in.AnnualFee) || !nonNegative(in.MinIncome) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "annual fee and minimum income must be non-negative numbers")
	}
	seen := make(map[string]bool, len(in.Benefits))
	for _, b := range in.Benefits {
		if b.CategoryID == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "every benefit needs a category")
		}
		if seen[b.CategoryID] {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "a card may have only one benefit per category")
		}
		seen[b.CategoryID] = true
		for _, v := range []float64{b.CashbackRate, b.PointsRate, b.MilesRate, b.Cap, b.MinSpend} {
			if !nonNegative(v) {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "benefit rates, cap and minimum spend must be non-negative numbers")
			}
		}
	}
	return nil
}

func checkCategories(tx *gorm.DB, benefits []BenefitInput) error {
	if len(benefits) == 0 {
		return nil
	}
	ids := make([]string, 0, len(benefits))
	for _, b := range benefits {
		ids = append(ids, b.CategoryID)
	}
	var count int64
	if err := tx.Model(&models.Category{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if int(count) != len(ids) {
		return apperrors.WithMessage(apperrors.ErrCategoryNotFound, "one or more benefit categories do not exist")
	}
	return nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
