package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gotocard/internal/services"
)

// RecommendationHandler handles recommendation generation and retrieval.
type RecommendationHandler struct {
	recommendationService services.RecommendationServicer
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recommendationService services.RecommendationServicer) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// Generate handles recomputing a user's recommendations.
// @Summary     Generate recommendations
// @Description Recompute and store the user's ranked card recommendations. Status is "no_eligible_cards" when the income requirement excludes every card.
// @Tags        recommendations
// @Produce     json
// @Param       userId path string true "User ID"
// @Success     200 {object} services.GenerateResult "Ranked recommendations"
// @Failure     400 {object} ErrorResponse "Invalid user ID"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     503 {object} ErrorResponse "Timed out or storage unavailable; safe to retry"
// @Router      /recommendations/users/{userId}/generate [post]
func (h *RecommendationHandler) Generate(c *gin.Context) {
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recommendationService.Generate(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecommendations handles reading the user's last generated list.
// @Summary     Get recommendations
// @Description Returns the last committed list, or an empty list if none was generated
// @Tags        recommendations
// @Produce     json
// @Param       userId path string true "User ID"
// @Success     200 {array} recommend.Recommendation "Recommendations in rank order"
// @Failure     400 {object} ErrorResponse "Invalid user ID"
// @Failure     503 {object} ErrorResponse "Storage unavailable; safe to retry"
// @Router      /recommendations/users/{userId} [get]
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	recs, err := h.recommendationService.Get(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// GetByCategory handles reading the stored recommendations for one category.
// @Summary     Get recommendations for a category
// @Tags        recommendations
// @Produce     json
// @Param       userId     path string true "User ID"
// @Param       categoryId path string true "Category ID"
// @Success     200 {array} recommend.Recommendation "Recommendations in rank order"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     503 {object} ErrorResponse "Storage unavailable; safe to retry"
// @Router      /recommendations/users/{userId}/categories/{categoryId} [get]
func (h *RecommendationHandler) GetByCategory(c *gin.Context) {
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parsePathID(c, "categoryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	recs, err := h.recommendationService.GetByCategory(c.Request.Context(), userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
