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
)

// bodyRow is one line of the body list.
type bodyRow struct {
	Code   spk.Code
	Point  ephem.Point
	Origin bool // the row is the current center
	Err    error
}

// BodiesModel lists every body in the kernel with its position relative to
// the center, and details the selected one as seen from the observer.
type BodiesModel struct {
	width  int
	height int
	cursor int

	codes []spk.Code
	rows  []bodyRow

	observer  spk.Code
	detail    *ephem.Observation
	detailErr error
}

// NewBodiesModel creates an empty body list.
func NewBodiesModel() BodiesModel {
	return BodiesModel{}
}

// SetSize updates the viewport size.
func (m BodiesModel) SetSize(width, height int) BodiesModel {
	m.width = width
	m.height = height
	return m
}

// SetCodes replaces the listed bodies, keeping the selection when the
// selected body is still present.
func (m BodiesModel) SetCodes(codes []spk.Code) BodiesModel {
	selected, ok := m.Selected()
	m.codes = codes
	m.cursor = 0
	if ok {
		for i, c := range codes {
			if c == selected {
				m.cursor = i
				break
			}
		}
	}
	return m
}

// Selected returns the code under the cursor.
func (m BodiesModel) Selected() (spk.Code, bool) {
	if m.cursor < 0 || m.cursor >= len(m.codes) {
		return 0, false
	}
	return m.codes[m.cursor], true
}

// Update handles cursor keys.
func (m BodiesModel) Update(msg tea.Msg) BodiesModel {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.codes)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		if len(m.codes) > 0 {
			m.cursor = len(m.codes) - 1
		}
	}
	return m
}

// Refresh recomputes every row and the detail panel at t.
func (m BodiesModel) Refresh(p *ephem.KernelProvider, center, observer spk.Code, t time.Time) BodiesModel {
	rows := make([]bodyRow, len(m.codes))
	for i, code := range m.codes {
		rows[i].Code = code
		if code == center {
			rows[i].Origin = true
			continue
		}
		rows[i].Point, rows[i].Err = p.PositionFrom(center, code, t)
	}
	m.rows = rows

	m.observer = observer
	m.detail, m.detailErr = nil, nil
	if selected, ok := m.Selected(); ok && selected != observer {
		obs, err := p.Observe(observer, selected, t)
		if err != nil {
			m.detailErr = err
		} else {
			m.detail = &obs
		}
	}
	return m
}

// View renders the list and the detail panel side by side.
func (m BodiesModel) View() string {
	if len(m.codes) == 0 {
		return "  Kernel has no segments\n"
	}

	list := m.renderList()
	detail := m.renderDetail()
	if m.width > 0 && m.width < 100 {
		return list + "\n" + detail
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail)
}

func (m BodiesModel) renderList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bodies"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-30s %16s %12s", "Body", "Distance (km)", "AU")))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 5 {
		maxRows = 5
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	end := min(start+maxRows, len(m.rows))

	for i := start; i < end; i++ {
		r := m.rows[i]
		var dist string
		switch {
		case r.Origin:
			dist = fmt.Sprintf("%16s %12s", "center", "")
		case r.Err != nil:
			dist = fmt.Sprintf("%16s %12s", "unavailable", "")
		default:
			km := r.Point.Distance()
			dist = fmt.Sprintf("%16.0f %12.6f", km, astro.KmToAU(km))
		}
		row := fmt.Sprintf("%-30s %s", truncate(codeLabel(r.Code), 30), dist)

		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(m.rows) > maxRows {
		fmt.Fprintf(&b, "\n  Showing %d-%d of %d bodies", start+1, end, len(m.rows))
	}
	return b.String()
}

func (m BodiesModel) renderDetail() string {
	selected, ok := m.Selected()
	if !ok {
		return ""
	}

	var lines []string
	lines = append(lines, titleStyle.Render(codeLabel(selected)))

	if ok && m.cursor < len(m.rows) {
		r := m.rows[m.cursor]
		switch {
		case r.Origin:
			lines = append(lines, field("Position", "origin"))
		case r.Err != nil:
			lines = append(lines, errorStyle.Render(wrap(r.Err.Error(), 48)))
		default:
			p := r.Point.Position
			lines = append(lines,
				field("X", fmt.Sprintf("%18.3f km", p.X)),
				field("Y", fmt.Sprintf("%18.3f km", p.Y)),
				field("Z", fmt.Sprintf("%18.3f km", p.Z)),
			)
			if r.Point.HasVelocity {
				v := r.Point.Velocity.Scale(1.0 / 86400)
				lines = append(lines, field("Speed", fmt.Sprintf("%18.3f km/s", v.Norm())))
			}
		}
	}

	lines = append(lines, "", mutedStyle.Render("From "+codeLabel(m.observer)))
	switch {
	case selected == m.observer:
		lines = append(lines, field("Range", "observer"))
	case m.detailErr != nil:
		lines = append(lines, errorStyle.Render(wrap(m.detailErr.Error(), 48)))
	case m.detail != nil:
		d := m.detail
		lines = append(lines,
			field("RA", fmt.Sprintf("%10.4f°", d.RADeg)),
			field("Dec", fmt.Sprintf("%+10.4f°", d.DecDeg)),
			field("Range", fmt.Sprintf("%.0f km", d.RangeKm)),
			field("Light time", astro.FormatLightTime(d.LightTime.Seconds())),
		)
		if d.HasSun {
			lines = append(lines, field("Sun sep", fmt.Sprintf("%.1f° %s", d.SunSeparationDeg, renderTier(d.SunTier))))
		}
	}

	return detailBoxStyle.Render(strings.Join(lines, "\n"))
}

func field(label, value string) string {
	return labelStyle.Render(label) + value
}

func renderTier(t astro.SunSeparationTier) string {
	var color lipgloss.Color
	switch t {
	case astro.SunSepWarning:
		color = lipgloss.Color("#E84A27")
	case astro.SunSepCaution:
		color = lipgloss.Color("#F5A623")
	default:
		color = lipgloss.Color("#5FAF87")
	}
	return lipgloss.NewStyle().Foreground(color).Render(t.String())
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// wrap breaks s into lines of at most width bytes on word boundaries.
func wrap(s string, width int) string {
	words := strings.Fields(s)
	var lines []string
	var line string
	for _, w := range words {
		if line != "" && len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		if line == "" {
			line = w
		} else {
			line += " " + w
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
