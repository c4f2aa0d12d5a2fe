package qualtrics

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func paramsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report JSON field names in errors
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// validateParams checks struct tags on a parameter struct and converts the
// first failure into a *ValidationError.
func validateParams(params any) error {
	err := paramsValidator().Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Row: -1, Err: err}
	}

	reasons := make([]string, len(verrs))
	for i, fe := range verrs {
		reasons[i] = fmt.Sprintf("%s failed %q validation", fe.Field(), fe.ActualTag())
	}
	return &ValidationError{
		Field:  verrs[0].Field(),
		Row:    -1,
		Reason: strings.Join(reasons, "; "),
	}
}

// requireID rejects empty path identifiers before a request is built.
func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Row: -1, Reason: "must not be empty"}
	}
	return nil
}
