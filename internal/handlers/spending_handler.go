package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gotocard/internal/services"
)

// SpendingHandler handles a user's spending records.
type SpendingHandler struct {
	spendingService services.SpendingServicer
}

// NewSpendingHandler creates a new SpendingHandler.
func NewSpendingHandler(spendingService services.SpendingServicer) *SpendingHandler {
	return &SpendingHandler{spendingService: spendingService}
}

// AddSpendingRequest represents the request payload for recording spend.
type AddSpendingRequest struct {
	CategoryID string   `json:"category_id" binding:"required,uuid"`
	Amount     *float64 `json:"amount" binding:"required,money"`
	Month      int      `json:"month" binding:"required,spend_month"`
	Year       int      `json:"year" binding:"required,spend_year"`
}

// SpendingQuery narrows listings to one month. Month and year go together.
type SpendingQuery struct {
	Month *int `form:"month" binding:"omitempty,spend_month"`
	Year  *int `form:"year" binding:"omitempty,spend_year"`
}

func (q SpendingQuery) filter() services.SpendingFilter {
	return services.SpendingFilter{Month: q.Month, Year: q.Year}
}

// AddSpending handles recording a spending entry.
// @Summary     Record spending
// @Description Add a spend entry for a user in a category and month. Several entries per month are summed.
// @Tags        spending
// @Accept      json
// @Produce     json
// @Param       userId  path string             true "User ID"
// @Param       request body AddSpendingRequest true "Spending details"
// @Success     201 {object} models.UserSpending "Spending recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spending/users/{userId} [post]
func (h *SpendingHandler) AddSpending(c *gin.Context) {
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddSpendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	spending, err := h.spendingService.AddSpending(userID, req.CategoryID, *req.Amount, req.Month, req.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"spending": spending})
}

// ListSpending handles listing a user's spending.
// @Summary     List spending
// @Tags        spending
// @Produce     json
// @Param       userId path  string true  "User ID"
// @Param       month  query int    false "Month (1-12), requires year"
// @Param       year   query int    false "Year, requires month"
// @Success     200 {array} models.UserSpending "Spending records, newest month first"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spending/users/{userId} [get]
func (h *SpendingHandler) ListSpending(c *gin.Context) {
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q SpendingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	records, err := h.spendingService.ListSpending(userID, q.filter())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"spending": records})
}

// GetSummary handles the aggregated spending profile.
// @Summary     Spending summary
// @Description Per-category totals for the latest month of each category, or for the given month
// @Tags        spending
// @Produce     json
// @Param       userId path  string true  "User ID"
// @Param       month  query int    false "Month (1-12), requires year"
// @Param       year   query int    false "Year, requires month"
// @Success     200 {object} recommend.Profile "Spending profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spending/users/{userId}/summary [get]
func (h *SpendingHandler) GetSummary(c *gin.Context) {
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q SpendingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	profile, err := h.spendingService.Summary(userID, q.filter())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": profile})
}

// DeleteSpending handles removing a spending record.
// @Summary     Delete spending
// @Tags        spending
// @Produce     json
// @Param       userId path string true "User ID"
// @Param       id     path string true "Spending ID"
// @Success     200 {object} MessageResponse "Spending deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Spending not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spending/users/{userId}/{id} [delete]
func (h *SpendingHandler) DeleteSpending(c *gin.Context) {
	userID, err := parsePathID(c, "userId")
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.spendingService.DeleteSpending(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Spending deleted"})
}
