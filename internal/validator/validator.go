// Package validator adapts go-playground/validator for echo and for config
// structs.
package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Echo compatible validator that reports fields by their wire name.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

func Create() CustomValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		jsonName := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if jsonName == "-" {
			return ""
		}
		if jsonName != "" {
			return jsonName
		}
		return field.Name
	})

	return CustomValidator{validator: validate}
}
