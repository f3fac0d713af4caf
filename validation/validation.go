// Package validation checks inbound search requests with go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/lexandro/davsearch-mcp/search"
)

type Validator struct {
	validator                *validator.Validate
	logger                   *slog.Logger
	tagValidationDetailsOnce sync.Once
	tagValidationDetailsMap  map[string]tagValidationDetails
}

type tagValidationDetails struct {
	validatorFunc validator.Func
	err           error
}

func New(logger *slog.Logger) (*Validator, error) {
	v := &Validator{validator: validator.New(), logger: logger}
	v.validator.RegisterTagNameFunc(useFieldNames)
	if err := v.registerCustomValidatorsForTags(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks a struct and reports the first failure in a readable form.
func (v *Validator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	v.logger.Warn("validation failed", "error", err.Error())

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}
	first := validationErrs[0]
	if details, ok := v.getTagValidationDetails()[first.Tag()]; ok {
		return fmt.Errorf("field '%s': %w", first.Field(), details.err)
	}
	switch first.Tag() {
	case "required":
		return fmt.Errorf("missing required field '%s'", first.Field())
	case "min", "max", "gte", "lte":
		return fmt.Errorf("value or length of field '%s' is not in the expected range", first.Field())
	}
	return fmt.Errorf("field '%s' failed '%s' validation", first.Field(), first.Tag())
}

var (
	ErrInvalidQuery = errors.New("invalid query")
	ErrInvalidScope = errors.New("invalid search scope (expected filename, content or metadata)")
	ErrInvalidPath  = errors.New("invalid store path")
	ErrInvalidType  = errors.New("invalid file type")
	ErrInvalidDate  = errors.New("invalid date (expected YYYY-MM-DD or RFC 3339)")
)

func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"valid_query":  {validatorFunc: isValidQuery, err: ErrInvalidQuery},
			"search_scope": {validatorFunc: isSearchScope, err: ErrInvalidScope},
			"store_path":   {validatorFunc: isStorePath, err: ErrInvalidPath},
			"file_type":    {validatorFunc: isFileType, err: ErrInvalidType},
			"search_date":  {validatorFunc: isSearchDate, err: ErrInvalidDate},
		}
	})
	return v.tagValidationDetailsMap
}

func (v *Validator) registerCustomValidatorsForTags() error {
	for tag, details := range v.getTagValidationDetails() {
		if err := v.validator.RegisterValidation(tag, details.validatorFunc); err != nil {
			v.logger.Error("failed to register custom validator function", "tag", tag, "error", err)
			return err
		}
	}
	return nil
}

// useFieldNames reports fields by their json name, or their form name for query-bound requests.
func useFieldNames(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func isValidQuery(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// isSearchScope accepts one scope name or a comma-separated list of them.
func isSearchScope(fl validator.FieldLevel) bool {
	return eachListItem(fl.Field().String(), func(name string) bool {
		_, err := search.ParseScope(name)
		return err == nil
	})
}

// isStorePath accepts empty (meaning root) or a slash-separated path without NUL bytes.
func isStorePath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" {
		return true
	}
	if strings.TrimSpace(p) == "" || strings.ContainsRune(p, '\x00') {
		return false
	}
	return !strings.Contains(p, "\\")
}

// isFileType accepts extensions with or without a leading dot, optionally comma-separated.
func isFileType(fl validator.FieldLevel) bool {
	return eachListItem(fl.Field().String(), func(ext string) bool {
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" || len(ext) > 16 {
			return false
		}
		return !strings.ContainsAny(ext, "/\\. *?")
	})
}

// eachListItem reports whether value holds at least one item and every item is valid.
func eachListItem(value string, valid func(string) bool) bool {
	found := false
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !valid(part) {
			return false
		}
		found = true
	}
	return found
}

func isSearchDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := search.ParseDate(s)
	return err == nil
}
