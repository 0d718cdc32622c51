// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"math"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"gotocard/internal/models"
	"gotocard/internal/recommend"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("card_type", validateCardType)
		_ = v.RegisterValidation("catalog_source", validateCatalogSource)
		_ = v.RegisterValidation("spend_month", validateSpendMonth)
		_ = v.RegisterValidation("spend_year", validateSpendYear)
		_ = v.RegisterValidation("money", validateMoney)
	}
}

func validateCardType(fl validator.FieldLevel) bool {
	switch models.CardType(fl.Field().String()) {
	case models.CardTypeVisa, models.CardTypeMastercard, models.CardTypeOther:
		return true
	}
	return false
}

func validateCatalogSource(fl validator.FieldLevel) bool {
	switch models.CatalogSource(fl.Field().String()) {
	case models.CatalogSourceSingSaver, models.CatalogSourceMoneySmart:
		return true
	}
	return false
}

func validateSpendMonth(fl validator.FieldLevel) bool {
	m := fl.Field().Int()
	return m >= 1 && m <= 12
}

func validateSpendYear(fl validator.FieldLevel) bool {
	y := fl.Field().Int()
	return y >= recommend.MinYear && y <= recommend.MaxYear
}

// validateMoney accepts finite, non-negative amounts.
func validateMoney(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
