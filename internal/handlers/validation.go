package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/harentsoaR/telehealth-api/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("template_status", validateTemplateStatus)
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range models.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func validateTemplateStatus(fl validator.FieldLevel) bool {
	return models.TemplateStatus(fl.Field().String()).Valid()
}
