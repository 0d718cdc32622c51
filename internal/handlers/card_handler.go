package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gotocard/internal/pagination"
	"gotocard/internal/services"
)

// CardHandler serves the card catalog.
type CardHandler struct {
	cardService services.CardServicer
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService services.CardServicer) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// ListCards handles listing active cards.
// @Summary     List cards
// @Description Paginated list of active cards with their category benefits
// @Tags        cards
// @Produce     json
// @Param       bank      query string false "Filter by bank (case-insensitive)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.CreditCard] "Paginated cards"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cards [get]
func (h *CardHandler) ListCards(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	cards, err := h.cardService.ListCards(page, c.Query("bank"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, cards)
}

// GetCard handles fetching a card with its benefits.
// @Summary     Get card by ID
// @Tags        cards
// @Produce     json
// @Param       id path string true "Card ID"
// @Success     200 {object} models.CreditCard "Card details"
// @Failure     400 {object} ErrorResponse "Invalid card ID"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cards/{id} [get]
func (h *CardHandler) GetCard(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.cardService.GetCardByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}
