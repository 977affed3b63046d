package render

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// SCRIPT INTERMEDIATE FORM
// =============================================================================
//
// Rendering fills this small tree first and serializes it exactly once.
// Fragment builders never touch surface formatting, so identical inputs
// always produce identical text and golden tests stay stable.

// indent is one level of test-body indentation in the generated source.
const indent = "  "

// fragment is one requirement's code block: a banner comment plus the
// statements under it. Lines carry their own relative indent; the serializer
// prefixes the test-body level.
type fragment struct {
	comment string
	lines   []string
}

// script holds every slot of a generated test in render order: imports,
// header comments, the test signature, setup statements, one fragment per
// requirement, and the closing blocks.
type script struct {
	imports   []string
	header    []string
	name      string
	fixtures  []string
	setup     []string
	fragments []fragment
	closing   []fragment
}

func (s *script) text() string {
	var b strings.Builder
	for _, imp := range s.imports {
		b.WriteString(imp)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, line := range s.header {
		b.WriteString("// ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "test(%s, async ({ %s }) => {\n", jsString(s.name), strings.Join(s.fixtures, ", "))
	for _, line := range s.setup {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, f := range s.fragments {
		writeFragment(&b, f)
	}
	for _, f := range s.closing {
		writeFragment(&b, f)
	}
	b.WriteString("});\n")
	return b.String()
}

func writeFragment(b *strings.Builder, f fragment) {
	b.WriteByte('\n')
	b.WriteString(indent)
	b.WriteString("// ")
	b.WriteString(f.comment)
	b.WriteByte('\n')
	for _, line := range f.lines {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

// =============================================================================
// STRING HELPERS
// =============================================================================

// jsString single-quotes s for embedding in generated source.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// jsStringList renders an array literal of single-quoted strings.
func jsStringList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = jsString(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

var jsIdentRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// jsIdent coerces s into a usable identifier for generated const names.
func jsIdent(s string) string {
	if jsIdentRe.MatchString(s) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}
	return out
}

// jsAccess renders a property access for key, dotted when the key is a plain
// identifier and bracketed otherwise.
func jsAccess(key string) string {
	if jsIdentRe.MatchString(key) {
		return "." + key
	}
	return "[" + jsString(key) + "]"
}

// envKey uppercases name into the UPPER_SNAKE form used for environment
// lookups in generated source.
func envKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "VALUE"
	}
	return b.String()
}

// selectorList joins selectors for a locator call, falling back when a
// requirement carries none.
func selectorList(selectors, fallback []string) string {
	if len(selectors) == 0 {
		selectors = fallback
	}
	return strings.Join(selectors, ", ")
}
