package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"gotocard/internal/models"
	"gotocard/internal/pagination"
	"gotocard/internal/recommend"
	"gotocard/internal/services"
	"gotocard/internal/uuid"
	"gotocard/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	createUserFn  func(email, name string, annualIncome *float64) (*models.User, error)
	getUserByIDFn func(id string) (*models.User, error)
	listUsersFn   func(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	updateUserFn  func(id, name string, annualIncome *float64) (*models.User, error)
	listUserIDsFn func() ([]string, error)
}

func (m *mockUserService) CreateUser(email, name string, annualIncome *float64) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, name, annualIncome)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(page)
	}
	resp := pagination.NewPageResponse([]models.User{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockUserService) UpdateUser(id, name string, annualIncome *float64) (*models.User, error) {
	if m.updateUserFn != nil {
		return m.updateUserFn(id, name, annualIncome)
	}
	return &models.User{}, nil
}

func (m *mockUserService) ListUserIDs() ([]string, error) {
	if m.listUserIDsFn != nil {
		return m.listUserIDsFn()
	}
	return []string{}, nil
}

type mockCategoryService struct {
	createCategoryFn  func(name, description, icon string) (*models.Category, error)
	listCategoriesFn  func() ([]models.Category, error)
	getCategoryByIDFn func(id string) (*models.Category, error)
}

func (m *mockCategoryService) CreateCategory(name, description, icon string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(name, description, icon)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) ListCategories() ([]models.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn()
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(id string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(id)
	}
	return &models.Category{}, nil
}

type mockCardService struct {
	listCardsFn   func(page pagination.PageRequest, bank string) (*pagination.PageResponse[models.CreditCard], error)
	getCardByIDFn func(id string) (*models.CreditCard, error)
	importCardFn  func(in services.CardImport) (*models.CreditCard, bool, error)
}

func (m *mockCardService) ListCards(page pagination.PageRequest, bank string) (*pagination.PageResponse[models.CreditCard], error) {
	if m.listCardsFn != nil {
		return m.listCardsFn(page, bank)
	}
	resp := pagination.NewPageResponse([]models.CreditCard{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCardService) GetCardByID(id string) (*models.CreditCard, error) {
	if m.getCardByIDFn != nil {
		return m.getCardByIDFn(id)
	}
	return &models.CreditCard{}, nil
}

func (m *mockCardService) ImportCard(in services.CardImport) (*models.CreditCard, bool, error) {
	if m.importCardFn != nil {
		return m.importCardFn(in)
	}
	return &models.CreditCard{}, true, nil
}

type mockSpendingService struct {
	addSpendingFn    func(userID, categoryID string, amount float64, month, year int) (*models.UserSpending, error)
	listSpendingFn   func(userID string, filter services.SpendingFilter) ([]models.UserSpending, error)
	deleteSpendingFn func(userID, spendingID string) error
	summaryFn        func(userID string, filter services.SpendingFilter) (*recommend.Profile, error)
}

func (m *mockSpendingService) AddSpending(userID, categoryID string, amount float64, month, year int) (*models.UserSpending, error) {
	if m.addSpendingFn != nil {
		return m.addSpendingFn(userID, categoryID, amount, month, year)
	}
	return &models.UserSpending{}, nil
}

func (m *mockSpendingService) ListSpending(userID string, filter services.SpendingFilter) ([]models.UserSpending, error) {
	if m.listSpendingFn != nil {
		return m.listSpendingFn(userID, filter)
	}
	return []models.UserSpending{}, nil
}

func (m *mockSpendingService) DeleteSpending(userID, spendingID string) error {
	if m.deleteSpendingFn != nil {
		return m.deleteSpendingFn(userID, spendingID)
	}
	return nil
}

func (m *mockSpendingService) Summary(userID string, filter services.SpendingFilter) (*recommend.Profile, error) {
	if m.summaryFn != nil {
		return m.summaryFn(userID, filter)
	}
	return &recommend.Profile{}, nil
}

type mockRecommendationService struct {
	generateFn      func(ctx context.Context, userID string) (*services.GenerateResult, error)
	getFn           func(ctx context.Context, userID string) ([]recommend.Recommendation, error)
	getByCategoryFn func(ctx context.Context, userID, categoryID string) ([]recommend.Recommendation, error)
}

func (m *mockRecommendationService) Generate(ctx context.Context, userID string) (*services.GenerateResult, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, userID)
	}
	return &services.GenerateResult{Status: recommend.StatusOK, Recommendations: []recommend.Recommendation{}}, nil
}

func (m *mockRecommendationService) Get(ctx context.Context, userID string) ([]recommend.Recommendation, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return []recommend.Recommendation{}, nil
}

func (m *mockRecommendationService) GetByCategory(ctx context.Context, userID, categoryID string) ([]recommend.Recommendation, error) {
	if m.getByCategoryFn != nil {
		return m.getByCategoryFn(ctx, userID, categoryID)
	}
	return []recommend.Recommendation{}, nil
}

// --- helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

var (
	testUserID     = uuid.New()
	testCategoryID = uuid.New()
)

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
