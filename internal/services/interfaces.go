package services

import (
	"context"

	"gotocard/internal/models"
	"gotocard/internal/pagination"
	"gotocard/internal/recommend"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, name string, annualIncome *float64) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	UpdateUser(id string, name string, annualIncome *float64) (*models.User, error)
	ListUserIDs() ([]string, error)
}

// CategoryServicer defines the contract for category reference data.
type CategoryServicer interface {
	CreateCategory(name, description, icon string) (*models.Category, error)
	ListCategories() ([]models.Category, error)
	GetCategoryByID(id string) (*models.Category, error)
}

// BenefitInput is one category rule of an imported card.
type BenefitInput struct {
	CategoryID   string
	CashbackRate float64
	PointsRate   float64
	MilesRate    float64
	Cap          float64
	MinSpend     float64
	Description  string
}

// CardImport is a card listing delivered by the catalog pipeline.
type CardImport struct {
	Name         string
	Bank         string
	CardType     models.CardType
	AnnualFee    float64
	MinIncome    float64
	WelcomeBonus string
	ImageURL     string
	Description  string
	Source       models.CatalogSource
	SourceURL    string
	IsActive     bool
	Benefits     []BenefitInput
}

// CardServicer defines the contract for the card catalog.
type CardServicer interface {
	ListCards(page pagination.PageRequest, bank string) (*pagination.PageResponse[models.CreditCard], error)
	GetCardByID(id string) (*models.CreditCard, error)
	ImportCard(in CardImport) (card *models.CreditCard, created bool, err error)
}

// SpendingFilter narrows spending queries to one calendar month.
// Both fields must be set together.
type SpendingFilter struct {
	Month *int
	Year  *int
}

// SpendingServicer defines the contract for user spending records.
type SpendingServicer interface {
	AddSpending(userID, categoryID string, amount float64, month, year int) (*models.UserSpending, error)
	ListSpending(userID string, filter SpendingFilter) ([]models.UserSpending, error)
	DeleteSpending(userID, spendingID string) error
	Summary(userID string, filter SpendingFilter) (*recommend.Profile, error)
}

// GenerateResult is the outcome of a recommendation run.
type GenerateResult struct {
	Status          recommend.Status           `json:"status"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// RecommendationServicer defines the contract for generating and reading recommendations.
type RecommendationServicer interface {
	Generate(ctx context.Context, userID string) (*GenerateResult, error)
	Get(ctx context.Context, userID string) ([]recommend.Recommendation, error)
	GetByCategory(ctx context.Context, userID, categoryID string) ([]recommend.Recommendation, error)
}
