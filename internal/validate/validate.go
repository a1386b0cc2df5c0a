// Package validate wraps go-playground/validator with English messages and
// JSON field names, plus the tags used by the task matrix.
package validate

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	isoDateTag = "isodate"
)

// DateLayouts are the date and timestamp forms the backend sends: plain
// dates and isoformat() output with or without offset.
var DateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate tries DateLayouts in order.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Fehlermeldungen mit JSON- bzw. Formularnamen statt Go-Feldnamen
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = Validate.RegisterValidation(isoDateTag, isoDateValidation)
	_ = Validate.RegisterTranslation(isoDateTag, Translator,
		func(t ut.Translator) error {
			return t.Add(isoDateTag, "{0} must be an ISO date or timestamp", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(isoDateTag, fe.Field())
			return msg
		},
	)
}

// isoDateValidation accepts empty strings; combine with "required" otherwise.
func isoDateValidation(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	_, ok := ParseDate(s)
	return ok
}

// FieldError is one failed field with a translated message.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates v and converts validator errors into *Error.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Namespace(), Error: fe.Translate(Translator)})
	}
	sort.Slice(out.Fields, func(i, j int) bool { return out.Fields[i].Field < out.Fields[j].Field })
	return out
}
