package snapshot

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/logging"
	"specforge/internal/types"
)

// interactiveTags are the element names collected as interactive. Anchors
// count only with an href; any element counts with a tabindex or an explicit
// widget role.
var interactiveTags = map[string]bool{
	"a":        true,
	"button":   true,
	"input":    true,
	"select":   true,
	"textarea": true,
}

// widgetRoles are the ARIA roles that make a non-interactive tag count.
var widgetRoles = map[string]bool{
	"button":   true,
	"link":     true,
	"checkbox": true,
	"radio":    true,
	"textbox":  true,
	"combobox": true,
	"tab":      true,
	"menuitem": true,
	"switch":   true,
}

// FromHTML parses static markup into a snapshot. Interactive elements are
// collected document-wide, forms additionally group their own fields, so an
// input inside a form appears in both views. The result passes the same
// boundary validation as every other provider.
func FromHTML(r io.Reader, pageURL string) (*types.StructuralSnapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML: %v", forgeerrors.ErrParsing, err)
	}

	snap := &types.StructuralSnapshot{
		URL:   pageURL,
		Title: findTitle(doc),
	}

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "form" {
				snap.Forms = append(snap.Forms, buildForm(n))
			}
			if isInteractive(n) {
				snap.InteractiveElements = append(snap.InteractiveElements, buildElement(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	logging.SnapshotDebug("parsed HTML for %s: %d interactive elements, %d forms",
		pageURL, len(snap.InteractiveElements), len(snap.Forms))
	return Normalize(snap)
}

func isInteractive(n *html.Node) bool {
	switch {
	case n.Data == "a":
		return attr(n, "href") != ""
	case interactiveTags[n.Data]:
		return true
	case attr(n, "tabindex") != "":
		return true
	default:
		return widgetRoles[strings.ToLower(attr(n, "role"))]
	}
}

func buildElement(n *html.Node) types.Element {
	return types.Element{
		Tag:       n.Data,
		Type:      attr(n, "type"),
		ID:        attr(n, "id"),
		Name:      attr(n, "name"),
		Text:      elementText(n),
		AriaLabel: attr(n, "aria-label"),
		Role:      attr(n, "role"),
	}
}

func buildForm(n *html.Node) types.Form {
	form := types.Form{
		ID:     attr(n, "id"),
		Action: attr(n, "action"),
		Method: attr(n, "method"),
	}
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.ElementNode && node != n {
			switch node.Data {
			case "input", "select", "textarea", "button":
				form.Fields = append(form.Fields, buildElement(node))
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return form
}

func findTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = n.FirstChild.Data
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return title
}

// elementText gathers the visible text under a node. Input elements have no
// text children, so their value attribute stands in.
func elementText(n *html.Node) string {
	if n.Data == "input" {
		return attr(n, "value")
	}
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.TrimSpace(sb.String())
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
