package snapshot

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNormalizeDefaults(t *testing.T) {
	in := &types.StructuralSnapshot{
		URL:   "  https://example.com/login  ",
		Title: " Login ",
		InteractiveElements: []types.Element{
			{Tag: " BUTTON ", Type: "SUBMIT", Text: "  Sign   in  ", Role: "Button"},
			{Tag: "", Text: "no tag, dropped"},
		},
		Forms: []types.Form{{
			Action: " /session ",
			Fields: []types.Element{{Tag: "INPUT", Type: "Email", Name: " email "}},
		}},
	}

	got, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	want := &types.StructuralSnapshot{
		URL:   "https://example.com/login",
		Title: "Login",
		InteractiveElements: []types.Element{
			{Tag: "button", Type: "submit", Text: "Sign in", Role: "button"},
		},
		Forms: []types.Form{{
			Action: "/session",
			Method: "GET",
			Fields: []types.Element{{Tag: "input", Type: "email", Name: "email"}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}

	if in.InteractiveElements[0].Tag != " BUTTON " {
		t.Errorf("input was mutated: Tag = %q", in.InteractiveElements[0].Tag)
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name string
		snap *types.StructuralSnapshot
	}{
		{"nil snapshot", nil},
		{"empty url", &types.StructuralSnapshot{}},
		{"non-http scheme", &types.StructuralSnapshot{URL: "ftp://example.com"}},
		{"missing host", &types.StructuralSnapshot{URL: "https:///path"}},
		{"unparsable url", &types.StructuralSnapshot{URL: "http://bad url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Normalize(tt.snap); !errors.Is(err, forgeerrors.ErrParsing) {
				t.Errorf("Normalize() = %v, want errors.Is ErrParsing", err)
			}
		})
	}
}

func TestNormalizeCapsElementText(t *testing.T) {
	in := &types.StructuralSnapshot{
		URL: "https://example.com",
		InteractiveElements: []types.Element{
			{Tag: "a", Text: strings.Repeat("x", 400)},
		},
	}
	got, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if n := len(got.InteractiveElements[0].Text); n != maxTextLen {
		t.Errorf("text length = %d, want %d", n, maxTextLen)
	}
}

func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"url": "https://example.com/dash",
		"title": "Dashboard",
		"interactive_elements": [{"tag": "BUTTON", "text": "Save"}],
		"forms": [{"id": "search", "method": "post"}]
	}`)

	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error: %v", err)
	}

	want := &types.StructuralSnapshot{
		URL:                 "https://example.com/dash",
		Title:               "Dashboard",
		InteractiveElements: []types.Element{{Tag: "button", Text: "Save"}},
		Forms:               []types.Form{{ID: "search", Method: "POST"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"url": `},
		{"missing url", `{"title": "no url"}`},
		{"wrong shape", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromJSON([]byte(tt.data)); !errors.Is(err, forgeerrors.ErrParsing) {
				t.Errorf("FromJSON() = %v, want errors.Is ErrParsing", err)
			}
		})
	}
}

func TestDecodeCapture(t *testing.T) {
	raw := []byte(`{
		"title": "Checkout",
		"elements": [
			{"tag": "button", "id": "pay", "text": "Pay now", "ariaLabel": "Pay now", "role": ""},
			{"tag": "a", "text": "Back to cart"}
		],
		"forms": [{
			"id": "card",
			"action": "/charge",
			"method": "post",
			"fields": [{"tag": "input", "type": "text", "name": "card_number"}]
		}]
	}`)

	got, err := decodeCapture("https://shop.example.com/checkout", raw)
	if err != nil {
		t.Fatalf("decodeCapture() error: %v", err)
	}

	want := &types.StructuralSnapshot{
		URL:   "https://shop.example.com/checkout",
		Title: "Checkout",
		InteractiveElements: []types.Element{
			{Tag: "button", ID: "pay", Text: "Pay now", AriaLabel: "Pay now"},
			{Tag: "a", Text: "Back to cart"},
		},
		Forms: []types.Form{{
			ID:     "card",
			Action: "/charge",
			Method: "POST",
			Fields: []types.Element{{Tag: "input", Type: "text", Name: "card_number"}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decodeCapture() mismatch (-want +got):\n%s", diff)
	}

	if _, err := decodeCapture("https://shop.example.com/checkout", []byte(`nonsense`)); !errors.Is(err, forgeerrors.ErrParsing) {
		t.Errorf("decodeCapture(bad JSON) = %v, want errors.Is ErrParsing", err)
	}
}
