// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// supportedCurrencies are the currencies the planner can display.
var supportedCurrencies = map[string]bool{
	"GBP": true, "USD": true, "EUR": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency_code", validateCurrencyCode)
		_ = v.RegisterValidation("pay_cycle_type", validatePayCycleType)
		_ = v.RegisterValidation("frequency_rule", validatePayCycleType)
		_ = v.RegisterValidation("seed_type", validateSeedType)
		_ = v.RegisterValidation("payment_source", validatePaymentSource)
		_ = v.RegisterValidation("payer", validatePayer)
		_ = v.RegisterValidation("pot_status", validatePotStatus)
		_ = v.RegisterValidation("repayment_status", validateRepaymentStatus)
	}
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return supportedCurrencies[fl.Field().String()]
}

func validatePayCycleType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "specific_date", "last_working_day", "every_4_weeks":
		return true
	}
	return false
}

func validateSeedType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "need", "want", "savings", "repay":
		return true
	}
	return false
}

func validatePaymentSource(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "me", "partner", "joint":
		return true
	}
	return false
}

func validatePayer(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "me", "partner", "both":
		return true
	}
	return false
}

func validatePotStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "paused", "complete":
		return true
	}
	return false
}

func validateRepaymentStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "paused", "paid":
		return true
	}
	return false
}
