package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Usernames are case-insensitive on input and stored lowercased.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{2,30}$`)

// RegisterCustomValidators installs domain validation tags on gin's binding
// engine. Must run once before the router starts serving.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
}
