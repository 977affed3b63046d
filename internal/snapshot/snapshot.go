// Package snapshot produces and validates the structural page snapshots the
// pipeline consumes. Three providers normalize into one schema: Normalize
// for snapshots handed over as values, FromJSON for snapshot files, FromHTML
// for static markup, and Capture for a live page driven over the DevTools
// protocol. The core never sees a raw provider shape: everything passes the
// boundary validation here first.
package snapshot

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/types"
)

// maxTextLen caps captured element text. Long copy blocks add nothing to
// classification and bloat snapshot files.
const maxTextLen = 256

// Normalize validates a snapshot at the pipeline boundary and returns a
// cleaned copy. The schema: URL is required and must be an absolute
// http/https URL; everything else is optional. Defaults applied on the way
// in: tags and input types are lowercased, form methods are uppercased with
// GET for an empty method, element text is trimmed and capped, and elements
// without a tag are dropped. The input value is never mutated.
func Normalize(snap *types.StructuralSnapshot) (*types.StructuralSnapshot, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", forgeerrors.ErrParsing)
	}
	if err := checkURL(snap.URL); err != nil {
		return nil, err
	}

	out := &types.StructuralSnapshot{
		URL:   strings.TrimSpace(snap.URL),
		Title: strings.TrimSpace(snap.Title),
	}
	for _, el := range snap.InteractiveElements {
		if cleaned, ok := cleanElement(el); ok {
			out.InteractiveElements = append(out.InteractiveElements, cleaned)
		}
	}
	for _, f := range snap.Forms {
		out.Forms = append(out.Forms, cleanForm(f))
	}
	return out, nil
}

// FromJSON decodes and validates a snapshot file.
func FromJSON(data []byte) (*types.StructuralSnapshot, error) {
	var snap types.StructuralSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: snapshot JSON: %v", forgeerrors.ErrParsing, err)
	}
	return Normalize(&snap)
}

func checkURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("%w: snapshot URL is required", forgeerrors.ErrParsing)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%w: snapshot URL %q: %v", forgeerrors.ErrParsing, trimmed, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: snapshot URL %q: scheme must be http or https", forgeerrors.ErrParsing, trimmed)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: snapshot URL %q: missing host", forgeerrors.ErrParsing, trimmed)
	}
	return nil
}

func cleanElement(el types.Element) (types.Element, bool) {
	tag := strings.ToLower(strings.TrimSpace(el.Tag))
	if tag == "" {
		return types.Element{}, false
	}
	return types.Element{
		Tag:       tag,
		Type:      strings.ToLower(strings.TrimSpace(el.Type)),
		ID:        strings.TrimSpace(el.ID),
		Name:      strings.TrimSpace(el.Name),
		Text:      clipText(el.Text),
		AriaLabel: strings.TrimSpace(el.AriaLabel),
		Role:      strings.ToLower(strings.TrimSpace(el.Role)),
	}, true
}

func cleanForm(f types.Form) types.Form {
	method := strings.ToUpper(strings.TrimSpace(f.Method))
	if method == "" {
		method = "GET"
	}
	out := types.Form{
		ID:     strings.TrimSpace(f.ID),
		Action: strings.TrimSpace(f.Action),
		Method: method,
	}
	for _, el := range f.Fields {
		if cleaned, ok := cleanElement(el); ok {
			out.Fields = append(out.Fields, cleaned)
		}
	}
	return out
}

func clipText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxTextLen {
		s = s[:maxTextLen]
	}
	return s
}
