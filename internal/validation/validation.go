// Package validation configures gin's validator with the custom rules and
// English messages used by the request payloads.
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"encho_fleet/internal/week"
)

// custom validation tags & texts
const (
	ymdTag  = "ymd"
	ymdText = "{0} must be a valid date (YYYY-MM-DD)"

	phoneTag  = "phone10"
	phoneText = "Enter a valid phone (10+ digits)"

	requiredTag  = "required"
	requiredText = "{0} is required"
)

var nonDigits = regexp.MustCompile(`\D`)

var (
	once       sync.Once
	translator ut.Translator
)

// Issues maps a JSON field name to a human readable problem.
type Issues map[string]string

// Error collects field problems found outside the validator, e.g. a value
// that failed to decode.
type Error struct {
	Issues Issues
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for f, msg := range e.Issues {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewError builds an Error for a single field.
func NewError(field, msg string) *Error {
	return &Error{Issues: Issues{field: msg}}
}

// Setup registers tag names, custom rules and translations on gin's
// validator. It is safe to call more than once.
func Setup() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, translator)

		// Use JSON tag names for errors instead of Go struct names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation(ymdTag, ymdValidation)
		_ = v.RegisterValidation(phoneTag, phoneValidation)
		registerTranslation(v, ymdTag, ymdText, false)
		registerTranslation(v, phoneTag, phoneText, false)
		registerTranslation(v, requiredTag, requiredText, true)
	})
}

func registerTranslation(v *validator.Validate, tag, text string, override bool) {
	_ = v.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Describe turns a binding error into per-field issues. ok is false when err
// is not a validation or decoding problem.
func Describe(err error) (Issues, bool) {
	Setup()

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		issues := make(Issues, len(verrs))
		for _, fe := range verrs {
			if _, seen := issues[fe.Field()]; !seen {
				issues[fe.Field()] = fe.Translate(translator)
			}
		}
		return issues, true
	}

	var own *Error
	if errors.As(err, &own) {
		return own.Issues, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return Issues{field: "has the wrong type (" + typeErr.Value + ")"}, true
	}
	return nil, false
}

// Check validates a single value against a tag list, e.g. "omitempty,url".
func Check(value interface{}, tags string) bool {
	Setup()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return true
	}
	return v.Var(value, tags) == nil
}

// Digits strips everything but 0-9.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

func ymdValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	_, err := week.ParseDate(strings.TrimSpace(s))
	return err == nil
}

func phoneValidation(fl validator.FieldLevel) bool {
	return len(Digits(fl.Field().String())) >= 10
}
