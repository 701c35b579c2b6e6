package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages line up with request bodies
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and converts failures into a ValidationError.
// The returned value is never nil; check HasErrors.
func validateStruct(s interface{}) *ValidationError {
	verr := NewValidationError()

	err := validate.Struct(s)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("request", err.Error())
		return verr
	}

	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "eqfield":
		return fmt.Sprintf("The %s does not match.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}

// FlexInt accepts a JSON number or a numeric string, which is what HTML
// form controls tend to submit. Null and absent values leave Set false.
type FlexInt struct {
	Value int
	Set   bool
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	f.Set, f.Valid, f.Value = false, false, 0

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	f.Set = true

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		if v == float64(int(v)) {
			f.Value = int(v)
			f.Valid = true
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			f.Set = false
			return nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			f.Value = n
			f.Valid = true
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Set || !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// IntValue builds a FlexInt holding v, mostly for tests and internal callers.
func IntValue(v int) FlexInt {
	return FlexInt{Value: v, Set: true, Valid: true}
}
