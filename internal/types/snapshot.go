package types

// =============================================================================
// STRUCTURAL SNAPSHOT
// =============================================================================

// StructuralSnapshot is a compact description of the target page used to
// refine classification. Providers (live capture, static HTML, JSON files)
// all normalize into this shape; every field except URL is optional.
type StructuralSnapshot struct {
	URL                 string    `json:"url"`
	Title               string    `json:"title,omitempty"`
	InteractiveElements []Element `json:"interactive_elements,omitempty"`
	Forms               []Form    `json:"forms,omitempty"`
}

// Element is one interactive element captured from the page.
type Element struct {
	Tag       string `json:"tag"`
	Type      string `json:"type,omitempty"` // input type attribute where present
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Text      string `json:"text,omitempty"`
	AriaLabel string `json:"aria_label,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Form groups the fields of one form element.
type Form struct {
	ID     string    `json:"id,omitempty"`
	Action string    `json:"action,omitempty"`
	Method string    `json:"method,omitempty"`
	Fields []Element `json:"fields,omitempty"`
}

// HasInteractive reports whether any interactive elements were captured.
func (s *StructuralSnapshot) HasInteractive() bool {
	return s != nil && len(s.InteractiveElements) > 0
}

// HasForms reports whether any forms were captured.
func (s *StructuralSnapshot) HasForms() bool {
	return s != nil && len(s.Forms) > 0
}

// HasAriaMetadata reports whether any captured element carries an aria-label
// or an explicit role.
func (s *StructuralSnapshot) HasAriaMetadata() bool {
	if s == nil {
		return false
	}
	for _, el := range s.InteractiveElements {
		if el.AriaLabel != "" || el.Role != "" {
			return true
		}
	}
	for _, f := range s.Forms {
		for _, el := range f.Fields {
			if el.AriaLabel != "" || el.Role != "" {
				return true
			}
		}
	}
	return false
}
