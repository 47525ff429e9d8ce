package dto

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

// RegisterValidators adds the "yyyymm" and "mcc" tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	if err := v.RegisterValidation("yyyymm", func(fl validator.FieldLevel) bool {
		return model.IsValidMonth(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register yyyymm: %w", err)
	}
	if err := v.RegisterValidation("mcc", func(fl validator.FieldLevel) bool {
		return engine.ValidMCC(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register mcc: %w", err)
	}
	return nil
}

// ValidationErrors flattens binding failures into the API error shape.
func ValidationErrors(err error) []ValidationError {
	var out []ValidationError
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}
	for _, e := range verrs {
		out = append(out, ValidationError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "yyyymm":
		return fmt.Sprintf("%s must be in YYYYMM format", e.Field())
	case "mcc":
		return fmt.Sprintf("%s must be a 4-digit merchant category code", e.Field())
	case "gt", "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s is too long", e.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
