package utils

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators installs the binding tags used by request DTOs:
// "timeofday" for HH:MM clock strings ("24:00" marks end of day) and
// "dateonly" for YYYY-MM-DD dates.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "24:00" {
			return true
		}
		_, err := time.Parse("15:04", value)
		return err == nil
	})
	_ = v.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
}
