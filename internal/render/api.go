package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"specforge/internal/types"
)

// =============================================================================
// API SEQUENCE FRAGMENTS
// =============================================================================
//
// API steps render in instruction order and share sequence state: a verify
// always refers to the most recent request before it, store steps declare
// consts later steps can reference, and an authenticated request attaches
// the most recent token-ish stored value. Timing captures are emitted only
// when some step in the sequence asserts response time.

var tokenishRe = regexp.MustCompile(`(?i)token|auth|session|key|secret|credential`)

// apiState carries the sequence context across steps.
type apiState struct {
	sends    int
	timed    bool
	declared map[string]bool
	authVar  string
}

// renderAPISteps renders the full sequence. When an authenticated request
// appears before any token-ish store step, a token const sourced from the
// environment is prepended to setup so the generated source never references
// a binding declared below its first use.
func renderAPISteps(calls []types.APICall, setup *[]string) []fragment {
	st := &apiState{declared: map[string]bool{}}
	needEnvToken := false
	seenTokenStore := false
	for _, c := range calls {
		if c.PerformanceMs > 0 || (c.Type == types.APIVerify && c.Target == "response-time") {
			st.timed = true
		}
		if c.Type == types.APIStore && tokenishRe.MatchString(c.StoreAs) {
			seenTokenStore = true
		}
		if c.Auth && !seenTokenStore {
			needEnvToken = true
		}
	}
	if needEnvToken {
		*setup = append(*setup, "const apiToken = process.env.API_TOKEN ?? '';")
		st.declared["apiToken"] = true
		st.authVar = "apiToken"
	}

	fragments := make([]fragment, 0, len(calls))
	for i, c := range calls {
		step := i + 1
		switch c.Type {
		case types.APIVerify:
			fragments = append(fragments, st.verifyFragment(c, step))
		case types.APIStore:
			fragments = append(fragments, st.storeFragment(c, step))
		case types.APILoad:
			fragments = append(fragments, st.loadFragment(c, step))
		default:
			fragments = append(fragments, st.sendFragment(c, step))
		}
	}
	return fragments
}

func (st *apiState) sendFragment(c types.APICall, step int) fragment {
	method := strings.ToUpper(c.Method)
	if method == "" {
		method = "GET"
	}
	url := c.URL
	if url == "" {
		url = "/"
	}

	f := fragment{comment: fmt.Sprintf("api step %d: send %s %s", step, method, url)}
	f.lines = append(f.lines, st.requestLines(method, url, c)...)
	resp := st.respVar()
	if c.ExpectStatus > 0 {
		f.lines = append(f.lines, fmt.Sprintf("expect(%s.status()).toBe(%d);", resp, c.ExpectStatus))
	}
	if c.PerformanceMs > 0 {
		f.lines = append(f.lines, fmt.Sprintf("expect(elapsed%d).toBeLessThan(%d);", st.sends, c.PerformanceMs))
	}
	return f
}

// requestLines emits one request call, advancing the send counter. Timing
// captures bracket the call when the sequence asserts response time.
func (st *apiState) requestLines(method, url string, c types.APICall) []string {
	st.sends++
	resp := st.respVar()
	var lines []string
	if st.timed {
		lines = append(lines, fmt.Sprintf("const started%d = Date.now();", st.sends))
	}
	opts := st.requestOptions(c)
	call := fmt.Sprintf("const %s = await request.%s(%s", resp, strings.ToLower(method), jsString(url))
	if len(opts) == 0 {
		lines = append(lines, call+");")
	} else {
		lines = append(lines, call+", {")
		lines = append(lines, opts...)
		lines = append(lines, "});")
	}
	if st.timed {
		lines = append(lines, fmt.Sprintf("const elapsed%d = Date.now() - started%d;", st.sends, st.sends))
	}
	return lines
}

// requestOptions builds the options-object body: headers (sorted for stable
// output), the Authorization header when the step authenticates, and the
// request body.
func (st *apiState) requestOptions(c types.APICall) []string {
	var lines []string
	keys := make([]string, 0, len(c.Headers))
	for k := range c.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > 0 || c.Auth {
		lines = append(lines, indent+"headers: {")
		for _, k := range keys {
			lines = append(lines, indent+indent+fmt.Sprintf("%s: %s,", jsString(k), jsString(c.Headers[k])))
		}
		if c.Auth {
			lines = append(lines, indent+indent+fmt.Sprintf("Authorization: `Bearer ${%s}`,", st.authName()))
		}
		lines = append(lines, indent+"},")
	}
	if c.Body != "" {
		lines = append(lines, indent+"data: "+bodyLiteral(c.Body)+",")
	}
	return lines
}

func (st *apiState) verifyFragment(c types.APICall, step int) fragment {
	target := c.Target
	if target == "" {
		target = "body"
	}
	f := fragment{comment: fmt.Sprintf("api step %d: verify %s", step, target)}
	f.lines = st.ensureResponse(c)
	resp := st.respVar()

	switch {
	case target == "status":
		status := c.ExpectStatus
		if status == 0 {
			status = 200
		}
		f.lines = append(f.lines, fmt.Sprintf("expect(%s.status()).toBe(%d);", resp, status))
	case target == "response-time":
		ms := c.PerformanceMs
		if ms == 0 {
			ms = 1000
		}
		f.lines = append(f.lines, fmt.Sprintf("expect(elapsed%d).toBeLessThan(%d);", st.sends, ms))
	case strings.HasPrefix(target, "header"):
		name := strings.TrimPrefix(target, "header")
		name = strings.TrimPrefix(name, ":")
		if name == "" {
			f.lines = append(f.lines, fmt.Sprintf("expect(Object.keys(%s.headers()).length).toBeGreaterThan(0);", resp))
			break
		}
		// Header lookups go through the lowercased map the framework exposes.
		access := fmt.Sprintf("%s.headers()%s", resp, jsAccess(strings.ToLower(name)))
		if c.Expected != "" {
			f.lines = append(f.lines, fmt.Sprintf("expect(%s).toContain(%s);", access, jsString(c.Expected)))
		} else {
			f.lines = append(f.lines, fmt.Sprintf("expect(%s).toBeTruthy();", access))
		}
	default:
		expected := c.Expected
		if expected == "" && target != "body" {
			expected = target
		}
		if expected != "" {
			f.lines = append(f.lines, fmt.Sprintf("expect(await %s.text()).toContain(%s);", resp, jsString(expected)))
		} else {
			f.lines = append(f.lines, fmt.Sprintf("expect((await %s.text()).length).toBeGreaterThan(0);", resp))
		}
	}
	return f
}

func (st *apiState) storeFragment(c types.APICall, step int) fragment {
	name := jsIdent(c.StoreAs)
	if name == "" || name == "_" {
		name = "stored"
	}
	if st.declared[name] {
		name = fmt.Sprintf("%s%d", name, step)
	}

	f := fragment{comment: fmt.Sprintf("api step %d: store %s as %s", step, c.Target, name)}
	f.lines = st.ensureResponse(c)
	resp := st.respVar()

	prop := c.Target
	if prop == "" || prop == "response" || prop == "body" {
		f.lines = append(f.lines, fmt.Sprintf("const %s = await %s.json();", name, resp))
	} else {
		f.lines = append(f.lines, fmt.Sprintf("const %s = (await %s.json())%s;", name, resp, jsAccess(prop)))
	}
	f.lines = append(f.lines, fmt.Sprintf("expect(%s).toBeDefined();", name))

	st.declared[name] = true
	if tokenishRe.MatchString(name) {
		st.authVar = name
	}
	return f
}

func (st *apiState) loadFragment(c types.APICall, step int) fragment {
	name := jsIdent(c.Target)
	if name == "" || name == "_" {
		name = "stored"
	}
	f := fragment{comment: fmt.Sprintf("api step %d: load %s", step, name)}
	if st.declared[name] {
		f.lines = []string{fmt.Sprintf("expect(%s).toBeTruthy();", name)}
		return f
	}
	f.lines = []string{
		fmt.Sprintf("const %s = process.env.%s ?? '';", name, envKey(name)),
		fmt.Sprintf("expect(%s).toBeTruthy();", name),
	}
	st.declared[name] = true
	if tokenishRe.MatchString(name) {
		st.authVar = name
	}
	return f
}

// ensureResponse bootstraps a plain GET when a verify or store step arrives
// before any request in the sequence, so the generated source always has a
// response to reference.
func (st *apiState) ensureResponse(c types.APICall) []string {
	if st.sends > 0 {
		return nil
	}
	url := c.URL
	if url == "" {
		url = "/"
	}
	return st.requestLines("GET", url, types.APICall{})
}

func (st *apiState) respVar() string {
	n := st.sends
	if n == 0 {
		n = 1
	}
	return fmt.Sprintf("response%d", n)
}

func (st *apiState) authName() string {
	if st.authVar != "" {
		return st.authVar
	}
	return "apiToken"
}

// bodyLiteral embeds a request body: JSON object and array text passes
// through as a literal, anything else is quoted.
func bodyLiteral(body string) string {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed
	}
	return jsString(body)
}
