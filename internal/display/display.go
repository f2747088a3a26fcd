// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type keeps a session status bar and an input prompt at the
// bottom of the terminal. All application output is printed above the
// rendered area via Program.Println / Printf, so concurrent writes never
// garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottocoach/internal/domain"
)

// Compile-time interface check.
var _ domain.Presenter = (*UI)(nil)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// sessionState is what the status bar shows.
type sessionState int32

const (
	stateIdle sessionState = iota
	stateRunning
	stateDone
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea and doubles as the clock's
// Presenter.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely call
// the print helpers, the Presenter methods, and read from [UI.InputChan]
// at any time after [UI.WaitReady] returns. Presenter calls only store
// values; the bar picks them up on its next refresh, so they never block
// the clock.
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool

	remaining atomic.Value // string
	summary   atomic.Value // string
	state     atomic.Int32
}

// NewUI creates the display. Call Run() to start.
func NewUI() *UI {
	u := &UI{
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
	u.remaining.Store("")
	u.summary.Store("")
	return u
}

// DisplayRemaining shows the seconds left until the next announcement.
func (u *UI) DisplayRemaining(text string) {
	u.remaining.Store(text)
}

// SessionEnded flips the bar to its finished state.
func (u *UI) SessionEnded() {
	u.remaining.Store("")
	u.state.Store(int32(stateDone))
}

// SessionStarted flips the bar to its running state.
func (u *UI) SessionStarted() {
	u.state.Store(int32(stateRunning))
}

// SessionStopped returns the bar to idle.
func (u *UI) SessionStopped() {
	u.remaining.Store("")
	u.state.Store(int32(stateIdle))
}

// SetSummary sets the settings summary shown at the right of the bar.
func (u *UI) SetSummary(text string) {
	u.summary.Store(text)
}

func (u *UI) snapshot() barInfo {
	return barInfo{
		state:     sessionState(u.state.Load()),
		remaining: u.remaining.Load().(string),
		summary:   u.summary.Load().(string),
	}
}

// Println prints a line above the prompt. Thread-safe. If the program
// hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt on its own line.
// Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintChat prints a line the coach says.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintHeader prints a section header such as a plan title.
func (u *UI) PrintHeader(text string) {
	u.Println(headerStyle.Render("  " + text))
}

// PrintLine prints plain primary text.
func (u *UI) PrintLine(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintVoice prints a voice-recognised input line.
func (u *UI) PrintVoice(text string) {
	u.Println(secondaryStyle.Render("[voice] ") + primaryStyle.Render(text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("coach") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain-text prompt: lipgloss-styled prompts add invisible ANSI bytes
	// that break textinput's width math.
	ti.Prompt = promptText
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		source:  u.snapshot,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn:  u.PrintUserInput,
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

const (
	promptText      = "coach> "
	refreshInterval = 200 * time.Millisecond
)

type barInfo struct {
	state     sessionState
	remaining string
	summary   string
}

type model struct {
	source  func() barInfo
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	bar     barInfo
	width   int
}

type refreshMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		refreshCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) == "" {
				return m, nil
			}
			select {
			case m.inputCh <- v:
			default: // main loop is behind; drop rather than freeze the UI
			}
			// Echo from a Cmd so it runs outside Update.
			echoFn := m.echoFn
			return m, func() tea.Msg {
				echoFn(v)
				return nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		return m, nil

	case refreshMsg:
		prev := m.bar
		m.bar = m.source()
		cmds := []tea.Cmd{refreshCmd()}
		if m.bar != prev {
			cmds = append(cmds, tea.SetWindowTitle(titleStr(m.bar)))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(renderBar(m.bar, m.width))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	return b.String()
}

// titleStr builds the terminal window title.
func titleStr(bar barInfo) string {
	switch {
	case bar.state == stateRunning && bar.remaining != "":
		return "OttoCoach " + bar.remaining + "s"
	case bar.state == stateDone:
		return "OttoCoach done"
	default:
		return "OttoCoach"
	}
}

// renderBar draws the status bar: session state on the left, settings
// summary on the right.
func renderBar(bar barInfo, width int) string {
	var left string
	switch bar.state {
	case stateRunning:
		if bar.remaining != "" {
			left = labelStyle.Render("next in ") + countStyle.Render(bar.remaining+"s")
		} else {
			left = labelStyle.Render("finishing")
		}
	case stateDone:
		left = doneStyle.Render("session complete")
	default:
		left = idleStyle.Render("idle, type start")
	}

	content := " " + left
	if bar.summary != "" {
		content += sepStyle.Render("  │  ") + labelStyle.Render(bar.summary)
	}
	content += " "

	if width <= 0 {
		width = 80
	}
	return barBg.Width(width).Render(content)
}
