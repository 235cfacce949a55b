package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps storefront and admin request bodies.
const MaxBodyBytes = 1 << 20

const invalidJSONMessage = "Invalid JSON payload"

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}()

// DecodeJSONBody decodes one JSON document from the request body into dest
// and validates it. Unknown fields are accepted: storefront product payloads
// carry far more than is stored.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := io.LimitReader(r.Body, MaxBodyBytes)
	defer io.Copy(io.Discard, body)

	dec := json.NewDecoder(body)
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, invalidJSONMessage)
	}
	if dec.More() {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errors.New("unexpected data after JSON document"), invalidJSONMessage)
	}
	return Validate(dest)
}

// Validate runs dest's struct tags through the shared validator. Field
// messages are returned as details keyed by JSON field name.
func Validate(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describe(fe)
	}
	fields := make([]string, 0, len(details))
	for field := range details {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	summary := make([]string, 0, len(fields))
	for _, field := range fields {
		summary = append(summary, field+" "+details[field])
	}

	return pkgerrors.Wrap(pkgerrors.CodeValidation, errors.New(strings.Join(summary, "; ")), "validation failed").
		WithDetails(details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url", "http_url":
		return "must be a URL"
	default:
		return "is invalid"
	}
}
