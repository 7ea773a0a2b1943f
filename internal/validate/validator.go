package validate

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// DateTime is the layout every date-time field is validated against.
const DateTime = time.RFC3339

// Validator checks decoded request values against their `validate` tags.
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// New builds a Validator that reports fields by their JSON names with
// English messages.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic("validate: register translations: " + err.Error())
	}

	return &Validator{v: v, trans: trans}
}

var std = New()

// Default returns the shared Validator.
func Default() *Validator {
	return std
}

// Struct trims every string field of ptr in place and validates it. The
// returned error is nil or Errors.
func (val *Validator) Struct(ptr interface{}) error {
	trimStrings(reflect.ValueOf(ptr))

	err := val.v.Struct(ptr)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var out Errors
	for _, fe := range verrs {
		out.Add(fieldPath(fe.Namespace()), fe.Translate(val.trans))
	}
	return out
}

// ParseTime parses a value already validated against DateTime.
func ParseTime(s string) time.Time {
	t, _ := time.Parse(DateTime, s)
	return t.UTC()
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// fieldPath drops the root struct name from a validator namespace:
// "createInput.messages[0].content" -> "messages[0].content".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
