package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	forgeerrors "specforge/internal/errors"
	"specforge/internal/logging"
	"specforge/internal/types"
)

// CaptureConfig holds live-capture settings.
type CaptureConfig struct {
	DebuggerURL         string `json:"debugger_url"`
	Headless            bool   `json:"headless"`
	NavigationTimeoutMs int    `json:"navigation_timeout_ms"`
	MaxElements         int    `json:"max_elements"`
}

// DefaultCaptureConfig returns sensible defaults.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Headless:            true,
		NavigationTimeoutMs: 30000,
		MaxElements:         200,
	}
}

// NavigationTimeout returns the navigation timeout.
func (c CaptureConfig) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// ElementLimit returns the per-query element cap.
func (c CaptureConfig) ElementLimit() int {
	if c.MaxElements == 0 {
		return 200
	}
	return c.MaxElements
}

// Capturer takes structural snapshots of live pages over the DevTools
// protocol. With an empty DebuggerURL it launches its own headless browser
// per capture and tears it down afterwards; with one set it attaches to the
// running browser and leaves it alone.
type Capturer struct {
	cfg CaptureConfig
}

// NewCapturer builds a capturer over the given configuration.
func NewCapturer(cfg CaptureConfig) *Capturer {
	return &Capturer{cfg: cfg}
}

// captureJS extracts the interactive surface of the loaded page. The three
// format slots take the element cap.
const captureJS = `
() => {
	const describe = (el) => ({
		tag: el.tagName.toLowerCase(),
		type: el.getAttribute('type') || '',
		id: el.id || '',
		name: el.getAttribute('name') || '',
		text: ((el.innerText || el.value || '') + '').trim().slice(0, 256),
		ariaLabel: el.getAttribute('aria-label') || '',
		role: el.getAttribute('role') || ''
	});
	const widgetRoles = ['button', 'link', 'checkbox', 'radio', 'textbox', 'combobox', 'tab', 'menuitem', 'switch'];
	const roleSelector = widgetRoles.map((r) => '[role=' + r + ']').join(', ');
	const interactive = Array.from(document.querySelectorAll(
		'a[href], button, input, select, textarea, [tabindex], ' + roleSelector
	)).slice(0, %d).map(describe);
	const forms = Array.from(document.querySelectorAll('form')).slice(0, %d).map((form) => ({
		id: form.id || '',
		action: form.getAttribute('action') || '',
		method: form.getAttribute('method') || '',
		fields: Array.from(form.querySelectorAll('input, select, textarea, button')).slice(0, %d).map(describe)
	}));
	return { title: document.title || '', elements: interactive, forms: forms };
}
`

// Capture navigates to the URL and extracts a snapshot. The page is given
// the configured window to finish loading; a page that never settles is
// captured as-is rather than failed.
func (c *Capturer) Capture(ctx context.Context, pageURL string) (*types.StructuralSnapshot, error) {
	timer := logging.StartTimer(logging.CategorySnapshot, "Capturer.Capture")
	defer timer.Stop()

	if err := checkURL(pageURL); err != nil {
		return nil, err
	}
	start := time.Now()

	controlURL := c.cfg.DebuggerURL
	launched := false
	if controlURL == "" {
		url, err := launcher.New().Headless(c.cfg.Headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
		launched = true
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	if launched {
		defer func() { _ = browser.Close() }()
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if !launched {
		defer func() { _ = page.Close() }()
	}
	if err := page.Timeout(c.cfg.NavigationTimeout()).WaitLoad(); err != nil {
		logging.SnapshotWarn("page load wait for %s: %v", pageURL, err)
	}

	limit := c.cfg.ElementLimit()
	res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           fmt.Sprintf(captureJS, limit, limit, limit),
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate capture script: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: capture script returned nothing", forgeerrors.ErrParsing)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal capture result: %w", err)
	}

	snap, err := decodeCapture(pageURL, raw)
	if err != nil {
		return nil, err
	}

	logging.Audit().SnapshotTaken(pageURL, len(snap.InteractiveElements), len(snap.Forms),
		time.Since(start).Milliseconds())
	logging.Snapshot("captured %s: %d interactive elements, %d forms",
		pageURL, len(snap.InteractiveElements), len(snap.Forms))
	return snap, nil
}

type capturedElement struct {
	Tag       string `json:"tag"`
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	AriaLabel string `json:"ariaLabel"`
	Role      string `json:"role"`
}

type capturedForm struct {
	ID     string            `json:"id"`
	Action string            `json:"action"`
	Method string            `json:"method"`
	Fields []capturedElement `json:"fields"`
}

type capturedPage struct {
	Title    string            `json:"title"`
	Elements []capturedElement `json:"elements"`
	Forms    []capturedForm    `json:"forms"`
}

// decodeCapture turns the capture script's JSON payload into a validated
// snapshot.
func decodeCapture(pageURL string, raw []byte) (*types.StructuralSnapshot, error) {
	var payload capturedPage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode capture result: %v", forgeerrors.ErrParsing, err)
	}

	snap := &types.StructuralSnapshot{
		URL:   pageURL,
		Title: payload.Title,
	}
	for _, el := range payload.Elements {
		snap.InteractiveElements = append(snap.InteractiveElements, toElement(el))
	}
	for _, f := range payload.Forms {
		form := types.Form{ID: f.ID, Action: f.Action, Method: f.Method}
		for _, el := range f.Fields {
			form.Fields = append(form.Fields, toElement(el))
		}
		snap.Forms = append(snap.Forms, form)
	}
	return Normalize(snap)
}

func toElement(el capturedElement) types.Element {
	return types.Element{
		Tag:       el.Tag,
		Type:      el.Type,
		ID:        el.ID,
		Name:      el.Name,
		Text:      el.Text,
		AriaLabel: el.AriaLabel,
		Role:      el.Role,
	}
}
