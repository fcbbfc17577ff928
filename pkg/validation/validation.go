// Package validation configures go-playground/validator with English messages keyed by
// JSON field names.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
)

var (
	transOnce sync.Once
	trans     ut.Translator
)

func translator() ut.Translator {
	transOnce.Do(func() {
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
	})
	return trans
}

// New returns a validator that reports JSON field names and carries English translations.
func New() *validator.Validate {
	v := validator.New()
	configure(v)
	return v
}

// SetupBinding applies the same configuration to gin's binding engine.
func SetupBinding() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	t := translator()
	_ = enTranslations.RegisterDefaultTranslations(v, t)
	_ = v.RegisterTranslation("required_if", t, func(u ut.Translator) error {
		return u.Add("required_if", "{0} is a required field", true)
	}, func(u ut.Translator, fe validator.FieldError) string {
		msg, _ := u.T("required_if", fe.Field())
		return msg
	})
}

// Fields maps each failing field to a human readable message. Non-validation errors
// are reported under "detail".
func Fields(err error) map[string]string {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		t := translator()
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(t)
		}
		return fields
	}
	if err != nil {
		fields["detail"] = err.Error()
	}
	return fields
}

// Error converts a validation failure into a VALIDATION_ERROR carrying per-field messages.
func Error(err error, message string) *appErrors.Error {
	e := appErrors.Validation(message, Fields(err))
	e.Err = err
	return e
}
