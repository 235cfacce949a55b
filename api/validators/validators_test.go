package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
)

type settingsBody struct {
	PageTitle   *string `json:"pageTitle" validate:"omitempty,min=1,max=120"`
	ButtonStyle *string `json:"buttonStyle" validate:"omitempty,oneof=button icon link"`
}

func TestDecodeJSONBodyInvalidJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader("{not json"))
	var dest settingsBody

	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "Invalid JSON payload" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	if typed.CauseMessage() == "" {
		t.Fatalf("expected decode cause to be preserved")
	}
}

func TestDecodeJSONBodyRunsValidation(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"buttonStyle":"banner","extra":1}`))
	var dest settingsBody

	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || !strings.HasPrefix(details["buttonStyle"], "must be one of") {
		t.Fatalf("expected buttonStyle detail, got %#v", typed.Details())
	}
}

func TestDecodeJSONBodyAcceptsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"pageTitle":"Saved","vendor":"acme"}`))
	var dest settingsBody
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.PageTitle == nil || *dest.PageTitle != "Saved" {
		t.Fatalf("unexpected page title %v", dest.PageTitle)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingData(t *testing.T) {
	for name, body := range map[string]string{
		"empty":    "",
		"trailing": `{"pageTitle":"a"} {"pageTitle":"b"}`,
	} {
		t.Run(name, func(t *testing.T) {
			var dest settingsBody
			err := DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(body)), &dest)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Message() != "Invalid JSON payload" {
				t.Fatalf("expected invalid JSON error, got %v", err)
			}
		})
	}
}

func TestQueryStringTrimsAndCaps(t *testing.T) {
	req := httptest.NewRequest("GET", "/?shop=%20demo.myshopify.com%20", nil)
	if got := QueryString(req, "shop"); got != "demo.myshopify.com" {
		t.Fatalf("unexpected shop %q", got)
	}

	req = httptest.NewRequest("GET", "/?shop="+strings.Repeat("a", 300), nil)
	if got := QueryString(req, "shop"); len(got) != 255 {
		t.Fatalf("expected value capped at 255, got %d", len(got))
	}

	req = httptest.NewRequest("GET", "/", nil)
	if got := QueryString(req, "shop"); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}
