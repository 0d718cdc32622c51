package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "gotocard/internal/errors"
	"gotocard/internal/recommend"
	"gotocard/internal/services"
)

func setupRecommendationRouter(svc *mockRecommendationService) *gin.Engine {
	h := NewRecommendationHandler(svc)
	r := gin.New()
	r.POST("/recommendations/users/:userId/generate", h.Generate)
	r.GET("/recommendations/users/:userId", h.GetRecommendations)
	r.GET("/recommendations/users/:userId/categories/:categoryId", h.GetByCategory)
	return r
}

func sampleRecommendation() recommend.Recommendation {
	return recommend.Recommendation{
		Rank:            1,
		Card:            recommend.CardSummary{ID: "card-1", Name: "Rewards+", Bank: "DBS"},
		Category:        recommend.CategorySummary{ID: testCategoryID, Name: "Dining"},
		Score:           88,
		EstimatedReward: 15,
		RateType:        recommend.RateCashback,
		Reason:          "5% cashback on Dining",
	}
}

func TestRecommendationHandler_Generate(t *testing.T) {
	path := "/recommendations/users/" + testUserID + "/generate"

	t.Run("returns status and list", func(t *testing.T) {
		svc := &mockRecommendationService{
			generateFn: func(_ context.Context, userID string) (*services.GenerateResult, error) {
				if userID != testUserID {
					t.Errorf("unexpected user %s", userID)
				}
				return &services.GenerateResult{
					Status:          recommend.StatusOK,
					Recommendations: []recommend.Recommendation{sampleRecommendation()},
				}, nil
			},
		}
		rec := doRequest(setupRecommendationRouter(svc), http.MethodPost, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["status"] != "ok" {
			t.Errorf("expected status ok, got %v", result["status"])
		}
		recs := result["recommendations"].([]interface{})
		first := recs[0].(map[string]interface{})
		if first["score"] != float64(88) || first["rate_type"] != "cashback" {
			t.Errorf("unexpected recommendation %v", first)
		}
	})

	t.Run("no eligible cards is still 200", func(t *testing.T) {
		svc := &mockRecommendationService{
			generateFn: func(context.Context, string) (*services.GenerateResult, error) {
				return &services.GenerateResult{Status: recommend.StatusNoEligibleCards, Recommendations: []recommend.Recommendation{}}, nil
			},
		}
		rec := doRequest(setupRecommendationRouter(svc), http.MethodPost, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["status"] != "no_eligible_cards" {
			t.Errorf("expected no_eligible_cards, got %v", result["status"])
		}
		if recs := result["recommendations"].([]interface{}); len(recs) != 0 {
			t.Errorf("expected empty list, got %d", len(recs))
		}
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		svc := &mockRecommendationService{
			generateFn: func(context.Context, string) (*services.GenerateResult, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		rec := doRequest(setupRecommendationRouter(svc), http.MethodPost, path, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})

	t.Run("timeout is 503 with Retry-After", func(t *testing.T) {
		svc := &mockRecommendationService{
			generateFn: func(context.Context, string) (*services.GenerateResult, error) {
				return nil, apperrors.Wrap(apperrors.ErrGenerationTimeout, context.DeadlineExceeded)
			},
		}
		rec := doRequest(setupRecommendationRouter(svc), http.MethodPost, path, "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After header")
		}
		assertErrorCode(t, parseJSON(t, rec), "GENERATION_TIMEOUT")
	})

	t.Run("unexpected error is 500 without details", func(t *testing.T) {
		svc := &mockRecommendationService{
			generateFn: func(context.Context, string) (*services.GenerateResult, error) {
				return nil, fmt.Errorf("pq: relation does not exist")
			},
		}
		rec := doRequest(setupRecommendationRouter(svc), http.MethodPost, path, "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INTERNAL_ERROR")
		if msg := result["error"].(map[string]interface{})["message"]; msg == "pq: relation does not exist" {
			t.Error("internal error leaked to client")
		}
	})

	t.Run("invalid user id is 400", func(t *testing.T) {
		rec := doRequest(setupRecommendationRouter(&mockRecommendationService{}), http.MethodPost, "/recommendations/users/abc/generate", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRecommendationHandler_GetRecommendations(t *testing.T) {
	t.Run("returns stored list", func(t *testing.T) {
		svc := &mockRecommendationService{
			getFn: func(context.Context, string) ([]recommend.Recommendation, error) {
				return []recommend.Recommendation{sampleRecommendation()}, nil
			},
		}
		rec := doRequest(setupRecommendationRouter(svc), http.MethodGet, "/recommendations/users/"+testUserID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if recs := parseJSON(t, rec)["recommendations"].([]interface{}); len(recs) != 1 {
			t.Errorf("expected 1 recommendation, got %d", len(recs))
		}
	})

	t.Run("storage failure is 503", func(t *testing.T) {
		svc := &mockRecommendationService{
			getFn: func(context.Context, string) ([]recommend.Recommendation, error) {
				return nil, apperrors.Wrap(apperrors.ErrTransientIO, fmt.Errorf("connection reset"))
			},
		}
		rec := doRequest(setupRecommendationRouter(svc), http.MethodGet, "/recommendations/users/"+testUserID, "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSIENT_IO")
	})
}

func TestRecommendationHandler_GetByCategory(t *testing.T) {
	var gotCategory string
	svc := &mockRecommendationService{
		getByCategoryFn: func(_ context.Context, _, categoryID string) ([]recommend.Recommendation, error) {
			gotCategory = categoryID
			return []recommend.Recommendation{sampleRecommendation()}, nil
		},
	}
	rec := doRequest(setupRecommendationRouter(svc), http.MethodGet,
		"/recommendations/users/"+testUserID+"/categories/"+testCategoryID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotCategory != testCategoryID {
		t.Errorf("expected category %s, got %s", testCategoryID, gotCategory)
	}
}
