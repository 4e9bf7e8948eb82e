package ingest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// rowSchema is the shape a row must have before values are coerced.
type rowSchema struct {
	Date   string `csv:"date" validate:"required"`
	Person string `csv:"person" validate:"required"`
	Miles  any    `csv:"miles" validate:"miles_value"`
}

var rowValidator = newRowValidator()

func newRowValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("miles_value", isMilesValue); err != nil {
		panic(fmt.Sprintf("register miles_value: %v", err))
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("csv"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func isMilesValue(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.String, reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

// checkSchema returns the violated-field messages for a row, or nil when it passes.
func checkSchema(row rowSchema) []string {
	err := rowValidator.Struct(row)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, schemaMessage(fe))
	}
	return msgs
}

func schemaMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "date":
		return "date required"
	case "person":
		return "person is empty"
	case "miles":
		return "miles must be text or a number"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
