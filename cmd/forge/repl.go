// This file contains the interactive compiler session.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"specforge/cmd/forge/ui"
	"specforge/internal/classify"
	"specforge/internal/compiler"
	"specforge/internal/config"
	"specforge/internal/logging"
	"specforge/internal/snapshot"
	"specforge/internal/store"
	"specforge/internal/types"
)

// replCmd starts the interactive session explicitly. Running forge with no
// arguments does the same thing.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive compiler session",
	Long: `Starts a terminal session that compiles each line you type into a
Playwright test. Slash commands control the session; /help lists them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL()
	},
}

// replMessage is one entry in the session transcript.
type replMessage struct {
	role    string // "user" or "forge"
	content string
	time    time.Time
}

// Messages delivered by background commands.
type (
	compileMsg  struct{ result *compiler.Result }
	snapshotMsg struct{ snap *types.StructuralSnapshot }
	errorMsg    error
)

// replModel is the bubbletea model behind the interactive session.
type replModel struct {
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	history      []replMessage
	isLoading    bool
	loadingLabel string
	err          error

	cfg     *config.Config
	cfgPath string
	ws      string
	comp    *compiler.Compiler
	tables  *classify.Tables
	st      *store.Store

	// Active structural snapshot; nil compiles from instruction text alone.
	snap *types.StructuralSnapshot

	// Last compile, held for /save.
	last  *compiler.Result
	saved bool

	compileCount int

	width  int
	height int
	ready  bool
}

func initREPL(cfg *config.Config, cfgPath, ws string, comp *compiler.Compiler, tables *classify.Tables, st *store.Store) replModel {
	styles := ui.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Describe a test... (Enter to compile, /help for commands)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	return replModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		history:   []replMessage{},
		cfg:       cfg,
		cfgPath:   cfgPath,
		ws:        ws,
		comp:      comp,
		tables:    tables,
		st:        st,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		footerHeight := 3
		inputHeight := 3
		verticalMargin := headerHeight + footerHeight + inputHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMargin)
			m.viewport.SetContent(m.renderHistory())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMargin
		}
		m.textinput.Width = msg.Width - 6

		wrap := msg.Width - 8
		if wrap < 40 {
			wrap = 40
		}
		if m.styles.Theme.IsDark {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(wrap),
			)
		} else {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithStylePath("light"),
				glamour.WithWordWrap(wrap),
			)
		}
		m.viewport.SetContent(m.renderHistory())

	case spinner.TickMsg:
		if m.isLoading {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case compileMsg:
		m.isLoading = false
		m.err = nil
		m.last = msg.result
		m.saved = false
		m.compileCount++
		m.history = append(m.history, replMessage{
			role:    "forge",
			content: formatResult(msg.result),
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case snapshotMsg:
		m.isLoading = false
		m.err = nil
		m.snap = msg.snap
		m.history = append(m.history, replMessage{
			role:    "forge",
			content: formatSnapshot(msg.snap),
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case errorMsg:
		m.isLoading = false
		m.err = msg
	}

	m.textinput, tiCmd = m.textinput.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// handleSubmit routes Enter: slash commands to the command table, everything
// else through the pipeline.
func (m replModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.history = append(m.history, replMessage{
		role:    "user",
		content: input,
		time:    time.Now(),
	})
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	m.textinput.Reset()
	m.isLoading = true
	m.loadingLabel = "Compiling..."
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.compileInstruction(input))
}

// handleCommand processes /command input. Commands cover the session (/quit,
// /clear), the pipeline (/tables, /snapshot, /save), and workspace
// configuration (/debug).
func (m replModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/clear":
		m.history = []replMessage{}
		m.err = nil
		m.last = nil
		m.viewport.SetContent("")
		m.textinput.Reset()
		return m, nil

	case "/help":
		return m.respond(replHelp), nil

	case "/tables":
		return m.respond(formatTables(m.tables)), nil

	case "/status":
		return m.respond(m.formatStatus()), nil

	case "/snapshot":
		if len(parts) < 2 {
			return m.respond("Usage: `/snapshot <url>` to capture, `/snapshot clear` to drop the active snapshot."), nil
		}
		if parts[1] == "clear" {
			m.snap = nil
			return m.respond("Snapshot cleared. Compiles now run from instruction text alone."), nil
		}
		m.textinput.Reset()
		m.isLoading = true
		m.loadingLabel = "Capturing..."
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.captureSnapshot(parts[1]))

	case "/save":
		return m.saveLast(), nil

	case "/debug":
		m.cfg.Logging.DebugMode = !m.cfg.Logging.DebugMode
		if err := m.cfg.Save(m.cfgPath); err != nil {
			return m.respond(fmt.Sprintf("Could not persist the debug flag: %v", err)), nil
		}
		state := "disabled"
		if m.cfg.Logging.DebugMode {
			state = "enabled"
		}
		return m.respond(fmt.Sprintf("Debug logging %s. Persisted to `%s`; takes effect on the next start.", state, m.cfgPath)), nil

	default:
		return m.respond(fmt.Sprintf("Unknown command `%s`. Type `/help` for the command list.", cmd)), nil
	}
}

// respond appends an assistant message and refreshes the transcript.
func (m replModel) respond(content string) replModel {
	m.history = append(m.history, replMessage{
		role:    "forge",
		content: content,
		time:    time.Now(),
	})
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	m.textinput.Reset()
	return m
}

// saveLast records the most recent compile in the history store.
func (m replModel) saveLast() replModel {
	if m.last == nil {
		return m.respond("Nothing to save yet. Compile an instruction first.")
	}
	if m.saved {
		return m.respond(fmt.Sprintf("`%s` is already recorded.", m.last.TestCase.Name))
	}
	id, err := m.st.Record(m.last.TestCase)
	if err != nil {
		return m.respond(fmt.Sprintf("Could not record the test case: %v", err))
	}
	m.saved = true
	return m.respond(fmt.Sprintf("Recorded `%s` as **%s**.\n\nSee it with `forge history show %s`.", m.last.TestCase.Name, id, id))
}

// compileInstruction runs the pipeline off the UI goroutine. The pipeline
// itself is pure and fast; the async hop keeps the spinner honest on slow
// terminals.
func (m replModel) compileInstruction(input string) tea.Cmd {
	comp, snap := m.comp, m.snap
	return func() tea.Msg {
		logging.REPLDebug("compiling instruction (%d bytes)", len(input))
		result, err := comp.Compile(input, snap)
		if err != nil {
			return errorMsg(fmt.Errorf("compile error: %w", err))
		}
		return compileMsg{result: result}
	}
}

// captureSnapshot drives the browser off the UI goroutine.
func (m replModel) captureSnapshot(url string) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		capturer := snapshot.NewCapturer(captureConfig(cfg))
		snap, err := capturer.Capture(ctx, url)
		if err != nil {
			return errorMsg(fmt.Errorf("capture error: %w", err))
		}
		return snapshotMsg{snap: snap}
	}
}

const replHelp = `## Commands

| Command | What it does |
|---------|--------------|
| /help | This table |
| /tables | Show the active classification tables |
| /status | Show the session state |
| /snapshot <url> | Capture a structural snapshot to compile against |
| /snapshot clear | Drop the active snapshot |
| /save | Record the last compile in the history store |
| /debug | Toggle debug logging and persist the flag |
| /clear | Clear the transcript |
| /quit, /exit, /q | Exit the session |

Anything else compiles as a test instruction.`

// formatResult renders one compile as markdown for the transcript.
func formatResult(r *compiler.Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("**Test**: `%s`\n", r.TestCase.Name))
	sb.WriteString(fmt.Sprintf("**Domain**: %s (confidence %.2f)\n", r.TestCase.Domain, r.Intent.Confidence))
	sb.WriteString(fmt.Sprintf("**Template**: %s\n", r.TestCase.Template))
	if r.Fallback {
		sb.WriteString("\n> ⚠ Degraded to fallback output\n")
	}
	for _, issue := range r.Issues {
		sb.WriteString(fmt.Sprintf("> ⚠ %s: %s\n", issue.Field, issue.Message))
	}
	sb.WriteString("\n```ts\n")
	sb.WriteString(strings.TrimRight(r.TestCase.Script, "\n"))
	sb.WriteString("\n```\n")
	sb.WriteString("\n*Use `/save` to record this result.*")

	return sb.String()
}

// formatSnapshot renders a capture confirmation.
func formatSnapshot(snap *types.StructuralSnapshot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Captured **%s**\n\n", snap.URL))
	if snap.Title != "" {
		sb.WriteString(fmt.Sprintf("- title: %s\n", snap.Title))
	}
	sb.WriteString(fmt.Sprintf("- %d interactive element(s)\n", len(snap.InteractiveElements)))
	sb.WriteString(fmt.Sprintf("- %d form(s)\n", len(snap.Forms)))
	sb.WriteString("\nCompiles now target this page. `/snapshot clear` drops it.")
	return sb.String()
}

// formatTables summarizes the active classification tables.
func formatTables(t *classify.Tables) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Tables %s\n\n", t.Version))
	for _, d := range t.Domains {
		sb.WriteString(fmt.Sprintf("- **%s**: %d keyword(s)\n", d.Domain, len(d.Keywords)))
	}
	sb.WriteString(fmt.Sprintf("\n%d enhanced accessibility entries, %d strong signals.", len(t.Enhanced), len(t.StrongSignals)))
	return sb.String()
}

// formatStatus summarizes the session state.
func (m replModel) formatStatus() string {
	var sb strings.Builder
	sb.WriteString("## Session\n\n")
	sb.WriteString(fmt.Sprintf("- workspace: `%s`\n", m.ws))
	sb.WriteString(fmt.Sprintf("- tables: %s\n", m.tables.Version))
	if m.snap != nil {
		sb.WriteString(fmt.Sprintf("- snapshot: %s (%d elements, %d forms)\n", m.snap.URL, len(m.snap.InteractiveElements), len(m.snap.Forms)))
	} else {
		sb.WriteString("- snapshot: none (instruction text only)\n")
	}
	sb.WriteString(fmt.Sprintf("- store: `%s`\n", storePath(m.ws, m.cfg)))
	sb.WriteString(fmt.Sprintf("- debug logging: %v\n", m.cfg.Logging.DebugMode))
	sb.WriteString(fmt.Sprintf("- compiles this session: %d\n", m.compileCount))
	return sb.String()
}

// renderHistory renders the full transcript.
func (m replModel) renderHistory() string {
	var sb strings.Builder

	for i, msg := range m.history {
		if i > 0 {
			sb.WriteString("\n\n")
		}

		timestamp := m.styles.Muted.Render(msg.time.Format("15:04"))
		switch msg.role {
		case "user":
			label := m.styles.Prompt.Render("You")
			sb.WriteString(fmt.Sprintf("%s %s\n%s", label, timestamp, m.styles.UserInput.Render(msg.content)))
		default:
			label := m.styles.Bold.Render("forge")
			sb.WriteString(fmt.Sprintf("%s %s\n%s", label, timestamp, m.safeRenderMarkdown(msg.content)))
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown, falling back to the raw text if the
// renderer fails or panics on malformed input.
func (m replModel) safeRenderMarkdown(content string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = content
		}
	}()

	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(rendered)
}

func (m replModel) View() string {
	if !m.ready {
		return "\n  Starting forge..."
	}

	header := m.renderHeader()

	chatView := m.styles.Content.Render(m.viewport.View())
	if m.isLoading {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " " + m.loadingLabel
	}
	if m.err != nil {
		chatView += "\n" + m.styles.Error.Render("✗ "+m.err.Error())
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m replModel) renderHeader() string {
	title := m.styles.Header.Render(" ⚒ forge ")
	version := m.styles.Badge.Render("v" + m.cfg.Version)
	workspace := m.styles.Muted.Render("  " + m.ws)

	var status string
	if m.isLoading {
		status = m.styles.Warning.Render("● Working")
	} else {
		status = m.styles.Success.Render("● Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		version,
		"  ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		workspace,
		m.styles.RenderDivider(m.width),
	)
}

func (m replModel) renderFooter() string {
	snapState := "no snapshot"
	if m.snap != nil {
		snapState = "snapshot: " + m.snap.URL
	}

	help := m.styles.Muted.Render(fmt.Sprintf("%s • Enter: compile • /help: commands • Ctrl+C: exit", snapState))
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(help)
}

func runREPL() error {
	cfg, ws, err := bootstrap()
	if err != nil {
		return err
	}
	logging.REPL("interactive session starting in %s", ws)

	comp, tables, err := buildCompiler(cfg)
	if err != nil {
		return err
	}

	st, err := store.New(storePath(ws, cfg))
	if err != nil {
		return fmt.Errorf("failed to open test case store: %w", err)
	}
	defer st.Close()

	p := tea.NewProgram(
		initREPL(cfg, resolveConfigPath(ws), ws, comp, tables, st),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
