package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gotocard/internal/models"
	"gotocard/internal/services"
)

// PipelineHandler serves the machine-to-machine endpoints used by the
// catalog importer and the refresh job.
type PipelineHandler struct {
	cardService services.CardServicer
	userService services.UserServicer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(cardService services.CardServicer, userService services.UserServicer) *PipelineHandler {
	return &PipelineHandler{cardService: cardService, userService: userService}
}

// BenefitRequest is one category rule of an imported card.
type BenefitRequest struct {
	CategoryID   string  `json:"category_id" binding:"required,uuid"`
	CashbackRate float64 `json:"cashback_rate" binding:"money"`
	PointsRate   float64 `json:"points_rate" binding:"money"`
	MilesRate    float64 `json:"miles_rate" binding:"money"`
	Cap          float64 `json:"cap" binding:"money"`
	MinSpend     float64 `json:"min_spend" binding:"money"`
	Description  string  `json:"description" binding:"max=255"`
}

// ImportCardRequest is a card listing scraped from a comparison site.
type ImportCardRequest struct {
	Name         string               `json:"name" binding:"required,min=1,max=150"`
	Bank         string               `json:"bank" binding:"required,min=1,max=100"`
	CardType     models.CardType      `json:"card_type" binding:"omitempty,card_type"`
	AnnualFee    float64              `json:"annual_fee" binding:"money"`
	MinIncome    float64              `json:"min_income" binding:"money"`
	WelcomeBonus string               `json:"welcome_bonus"`
	ImageURL     string               `json:"image_url" binding:"omitempty,url"`
	Description  string               `json:"description"`
	Source       models.CatalogSource `json:"source" binding:"required,catalog_source"`
	SourceURL    string               `json:"source_url" binding:"omitempty,url"`
	IsActive     *bool                `json:"is_active"`
	Benefits     []BenefitRequest     `json:"benefits" binding:"dive"`
}

func (r ImportCardRequest) toImport() services.CardImport {
	in := services.CardImport{
		Name:         r.Name,
		Bank:         r.Bank,
		CardType:     r.CardType,
		AnnualFee:    r.AnnualFee,
		MinIncome:    r.MinIncome,
		WelcomeBonus: r.WelcomeBonus,
		ImageURL:     r.ImageURL,
		Description:  r.Description,
		Source:       r.Source,
		SourceURL:    r.SourceURL,
		IsActive:     r.IsActive == nil || *r.IsActive,
	}
	for _, b := range r.Benefits {
		in.Benefits = append(in.Benefits, services.BenefitInput{
			CategoryID:   b.CategoryID,
			CashbackRate: b.CashbackRate,
			PointsRate:   b.PointsRate,
			MilesRate:    b.MilesRate,
			Cap:          b.Cap,
			MinSpend:     b.MinSpend,
			Description:  b.Description,
		})
	}
	return in
}

// ImportCard handles upserting a card from the catalog pipeline.
// @Summary     Import card
// @Description Create or update a card by (bank, name) and replace its benefits
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       request body ImportCardRequest true "Card listing"
// @Success     200 {object} models.CreditCard "Card updated"
// @Success     201 {object} models.CreditCard "Card created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     404 {object} ErrorResponse "Benefit category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/cards [post]
// @Security    PipelineKey
func (h *PipelineHandler) ImportCard(c *gin.Context) {
	var req ImportCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	card, created, err := h.cardService.ImportCard(req.toImport())
	if err != nil {
		respondWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"card": card, "created": created})
}

// ListUserIDs handles listing every user id for batch jobs.
// @Summary     List user IDs
// @Tags        pipeline
// @Produce     json
// @Success     200 {object} object "user_ids"
// @Failure     401 {object} ErrorResponse "Missing or invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/users [get]
// @Security    PipelineKey
func (h *PipelineHandler) ListUserIDs(c *gin.Context) {
	ids, err := h.userService.ListUserIDs()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_ids": ids})
}
