// Package ui provides the terminal kernel browser using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-ephem/internal/astro"
	"github.com/litescript/ls-ephem/internal/ephem"
	"github.com/litescript/ls-ephem/internal/spk"
	"github.com/litescript/ls-ephem/internal/state"
	"github.com/litescript/ls-ephem/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewBodies ViewMode = iota
	ViewChain
	ViewEvents
	viewCount
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic position updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// KernelReloadedMsg signals the kernel behind the provider changed.
	KernelReloadedMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a failed reload.
	ErrorMsg struct {
		Error error
	}
)

// Options configures the browser.
type Options struct {
	Observer spk.Code
	Center   spk.Code
	Step     time.Duration // time shift per [ or ] keypress
	Refresh  time.Duration // position update interval

	// Clock returns the wall-clock time; defaults to time.Now.
	Clock func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	provider *ephem.KernelProvider
	state    *state.Manager
	clock    func() time.Time

	// Query settings
	observer spk.Code
	center   spk.Code
	step     time.Duration
	refresh  time.Duration
	offset   time.Duration

	// UI state
	viewMode ViewMode
	width    int
	height   int
	ready    bool
	animTick int
	lastErr  error

	bodies   BodiesModel
	snapshot state.Snapshot
}

// New creates a new root UI model.
func New(provider *ephem.KernelProvider, stateMgr *state.Manager, opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Step <= 0 {
		opts.Step = time.Hour
	}
	if opts.Refresh <= 0 {
		opts.Refresh = time.Second
	}

	m := Model{
		provider: provider,
		state:    stateMgr,
		clock:    opts.Clock,
		observer: opts.Observer,
		center:   opts.Center,
		step:     opts.Step,
		refresh:  opts.Refresh,
		viewMode: ViewBodies,
		bodies:   NewBodiesModel(),
		snapshot: stateMgr.Snapshot(),
	}
	m.bodies = m.bodies.SetCodes(provider.Codes())
	m.bodies = m.bodies.Refresh(provider, m.center, m.observer, m.at())
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		animTickCmd(),
	)
}

// at returns the instant being displayed.
func (m Model) at() time.Time {
	return m.clock().Add(m.offset)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "b":
			m.viewMode = ViewBodies
		case "2", "v":
			m.viewMode = ViewChain
		case "3", "e":
			m.viewMode = ViewEvents
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "]":
			m.offset += m.step
			m.bodies = m.bodies.Refresh(m.provider, m.center, m.observer, m.at())
		case "[":
			m.offset -= m.step
			m.bodies = m.bodies.Refresh(m.provider, m.center, m.observer, m.at())
		case "n":
			m.offset = 0
			m.bodies = m.bodies.Refresh(m.provider, m.center, m.observer, m.at())
		case "c":
			m.center = m.nextCenter()
			m.bodies = m.bodies.Refresh(m.provider, m.center, m.observer, m.at())

		default:
			m.bodies = m.bodies.Update(msg)
			m.bodies = m.bodies.Refresh(m.provider, m.center, m.observer, m.at())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// Logo ~10 lines, tabs and footer ~4
		m.bodies = m.bodies.SetSize(msg.Width, msg.Height-14)

	case TickMsg:
		cmds = append(cmds, m.tickCmd())
		m.snapshot = m.state.Snapshot()
		m.bodies = m.bodies.Refresh(m.provider, m.center, m.observer, m.at())

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case KernelReloadedMsg:
		m.snapshot = msg.Snapshot
		m.lastErr = nil
		m.bodies = m.bodies.SetCodes(m.provider.Codes())
		m.bodies = m.bodies.Refresh(m.provider, m.center, m.observer, m.at())

	case ErrorMsg:
		m.lastErr = msg.Error
	}

	return m, tea.Batch(cmds...)
}

// nextCenter cycles the center through the barycenter, the Sun and the
// observer, skipping bodies the kernel does not cover.
func (m Model) nextCenter() spk.Code {
	cycle := []spk.Code{spk.SolarSystemBarycenter, spk.Sun, m.observer}
	idx := -1
	for i, c := range cycle {
		if c == m.center {
			idx = i
			break
		}
	}
	for i := 1; i <= len(cycle); i++ {
		next := cycle[(idx+i+len(cycle))%len(cycle)]
		if next == m.center {
			continue
		}
		if next == spk.SolarSystemBarycenter || m.provider.Available(next) {
			return next
		}
	}
	return m.center
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewBodies:
		content = m.bodies.View()
	case ViewChain:
		target, ok := m.bodies.Selected()
		content = renderChain(m.provider, m.center, target, ok)
	case ViewEvents:
		content = renderEvents(m.snapshot, m.height-14)
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderStatusLine()
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ██╗     ███████╗      ███████╗██████╗ ██╗  ██╗███████╗███╗   ███╗`,
		`  ██║     ██╔════╝      ██╔════╝██╔══██╗██║  ██║██╔════╝████╗ ████║`,
		`  ██║     ███████╗█████╗█████╗  ██████╔╝███████║█████╗  ██╔████╔██║`,
		`  ██║     ╚════██║╚════╝██╔══╝  ██╔═══╝ ██╔══██║██╔══╝  ██║╚██╔╝██║`,
		`  ███████╗███████║      ███████╗██║     ██║  ██║███████╗██║ ╚═╝ ██║`,
		`  ╚══════╝╚══════╝      ╚══════╝╚═╝     ╚═╝  ╚═╝╚══════╝╚═╝     ╚═╝`,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s · v%s", m.provider.Name(), version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient:
// blue -> purple -> magenta -> pink, darker toward the bottom.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	if xRatio < 0.33 {
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	brightness := 1.0 - (yRatio * 0.5)
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*brightness), clampByte(g*brightness), clampByte(b*brightness))
}

func clampByte(v float64) int {
	switch {
	case v > 255:
		return 255
	case v < 0:
		return 0
	}
	return int(v)
}

func (m Model) renderStatusLine() string {
	at := m.at()
	when := at.UTC().Format("2006-01-02 15:04:05 UTC")
	if m.offset != 0 {
		when += fmt.Sprintf(" (%+v)", m.offset)
	}
	status := fmt.Sprintf("  center %s · observer %s · %s · TDB %.5f",
		codeLabel(m.center), codeLabel(m.observer), when, astro.TDB(at))
	return m.renderTabs() + "\n" + mutedStyle.Render(status) + "\n"
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Bodies", "[2] Chain", "[3] Events"}

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeTabStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, mutedStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.lastErr != nil:
		status = errorStyle.Render("ERROR: " + m.lastErr.Error())
	case m.snapshot.Generation > 0:
		status = accentStyle.Render(spinner) + mutedStyle.Render(fmt.Sprintf(" %d segments in %d files",
			m.snapshot.Segments, len(m.snapshot.Files)))
		if m.snapshot.LoadDuration > 0 {
			status += mutedStyle.Render(" (" + m.snapshot.LoadDuration.Round(time.Millisecond).String() + ")")
		}
	default:
		status = accentStyle.Render(spinner) + mutedStyle.Render(" no kernel loaded")
	}

	var help string
	switch m.viewMode {
	case ViewChain:
		help = "j/k: body | c: center | tab: switch view"
	case ViewEvents:
		help = "tab: switch view | q: quit"
	default:
		help = "j/k: body | [/]: time | n: now | c: center | tab: switch view"
	}

	return "  " + status + "  " + mutedStyle.Render("|") + "  " + mutedStyle.Render(help)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendKernelReloaded creates a command that announces a reload.
func SendKernelReloaded(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return KernelReloadedMsg{Snapshot: snapshot}
	}
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}

// codeLabel renders a code with its display name when one is known.
func codeLabel(code spk.Code) string {
	if name := spk.DisplayName(code); name != "" {
		return fmt.Sprintf("%d %s", code, name)
	}
	return fmt.Sprintf("%d", code)
}
