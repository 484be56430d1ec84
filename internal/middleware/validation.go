package middleware

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/kicks-storefront/internal/app/service"
)

var setupValidatorOnce sync.Once

// SetupValidator registers the cart binding tags on gin's validator.
// Safe to call more than once.
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		// report json names in validation errors
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})

		_ = v.RegisterValidation("cart_size", func(fl validator.FieldLevel) bool {
			return service.IsValidSize(fl.Field().String())
		})
		_ = v.RegisterValidation("cart_color", func(fl validator.FieldLevel) bool {
			return service.IsValidColor(fl.Field().String())
		})
	})
}
