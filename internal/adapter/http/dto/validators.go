package dto

import (
	"rental-payment-service/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("decimal_amount", validateDecimalAmount)
	}
}

// validateDecimalAmount accepts positive decimal strings with at most two
// fraction digits.
func validateDecimalAmount(fl validator.FieldLevel) bool {
	amount, err := domain.ParseAmount(fl.Field().String())
	return err == nil && amount > 0
}
