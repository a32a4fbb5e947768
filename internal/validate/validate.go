// Package validate checks configuration structs against their declared
// `validate` tags and reports failures per field.
//
// Besides the validator built-ins it understands two HTTP tags:
// "header" (a valid header field name) and "mediatype" (a media type
// such as "text/plain" or a short name without a slash).
package validate

import (
	"errors"
	"fmt"
	"mime"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"golang.org/x/net/http/httpguts"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("validate: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	for tag, rule := range map[string]struct {
		fn  validator.Func
		msg string
	}{
		"header":    {fn: isHeaderName, msg: "{0} is not a valid header name"},
		"mediatype": {fn: isMediaType, msg: "{0} is not a valid media type"},
	} {
		if err := validate.RegisterValidation(tag, rule.fn); err != nil {
			panic(err)
		}
		if err := validate.RegisterTranslation(tag, translator, registerMsg(tag, rule.msg), translateField); err != nil {
			panic(err)
		}
	}
}

// Check validates val against its declared tags. Tag failures are
// returned as [FieldErrors]; any other validator error is returned as is.
func Check(val any) error {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}

	var verrors validator.ValidationErrors
	if !errors.As(err, &verrors) {
		return err
	}

	fields := make(FieldErrors, 0, len(verrors))
	for _, verror := range verrors {
		// Drop the root struct name: "Config.headers[X]" -> "headers[X]".
		_, field, _ := strings.Cut(verror.Namespace(), ".")
		fields = append(fields, FieldError{
			Field: field,
			Err:   message(verror),
		})
	}

	return fields
}

// FieldError represents a single validation error for a specific field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

// Error implements the error interface, returning a human-readable
// summary of all field errors.
func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return strings.Join(parts, "; ")
}

// Fields returns the failing fields mapped to their messages.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, fld := range fe {
		m[fld.Field] = fld.Err
	}
	return m
}

func message(verror validator.FieldError) string {
	switch verror.Tag() {
	case "required":
		return "This field is required"
	default:
		return verror.Translate(translator)
	}
}

func isHeaderName(fl validator.FieldLevel) bool {
	return httpguts.ValidHeaderFieldName(fl.Field().String())
}

// isMediaType accepts "type/subtype" values with optional parameters, and
// bare short names that are resolved later.
func isMediaType(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if !strings.Contains(v, "/") {
		return v != "" && !strings.ContainsAny(v, " \t;")
	}

	_, _, err := mime.ParseMediaType(v)
	return err == nil
}

func registerMsg(tag, msg string) validator.RegisterTranslationsFunc {
	return func(trans ut.Translator) error {
		return trans.Add(tag, msg, true)
	}
}

func translateField(trans ut.Translator, fe validator.FieldError) string {
	msg, err := trans.T(fe.Tag(), fmt.Sprint(fe.Value()))
	if err != nil {
		return fe.Error()
	}
	return msg
}
