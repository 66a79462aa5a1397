package ui

import (
	"fmt"
	"strings"

	"github.com/litescript/ls-ephem/internal/astro"
	"github.com/litescript/ls-ephem/internal/ephem"
	"github.com/litescript/ls-ephem/internal/spk"
	"github.com/litescript/ls-ephem/internal/state"
)

// renderChain shows the composite vector the kernel builds for
// center -> target.
func renderChain(p *ephem.KernelProvider, center, target spk.Code, ok bool) string {
	var b strings.Builder

	if !ok {
		return "  No body selected\n"
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("Chain %s -> %s", codeLabel(center), codeLabel(target))))
	b.WriteString("\n\n")

	if center == target {
		b.WriteString(mutedStyle.Render("  The selected body is the center"))
		b.WriteString("\n")
		return b.String()
	}

	chain, err := p.Chain(center, target)
	if err != nil {
		b.WriteString(errorStyle.Render("  " + wrap(err.Error(), 72)))
		b.WriteString("\n")
		return b.String()
	}
	for _, line := range strings.Split(chain, "\n") {
		b.WriteString(rowStyle.Render("  " + line))
		b.WriteString("\n")
	}
	return b.String()
}

// renderEvents shows the reload history, newest first.
func renderEvents(snap state.Snapshot, maxRows int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Kernel"))
	b.WriteString("\n")
	if snap.Generation == 0 {
		b.WriteString("  Nothing loaded yet\n")
	} else {
		fmt.Fprintf(&b, "  load #%d · %d segments · %d pairs\n", snap.Generation, snap.Segments, len(snap.Pairs))
		for _, f := range snap.Files {
			b.WriteString(mutedStyle.Render("  " + f))
			b.WriteString("\n")
		}
	}
	if snap.LastError != nil {
		b.WriteString(errorStyle.Render("  last reload failed: " + snap.LastError.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-18s %s", "Time", "Event", "Detail")))
	b.WriteString("\n")

	if len(snap.Events) == 0 {
		b.WriteString("  No changes since the first load\n")
		return b.String()
	}

	if maxRows < 5 {
		maxRows = 5
	}
	shown := 0
	for i := len(snap.Events) - 1; i >= 0 && shown < maxRows; i-- {
		e := snap.Events[i]
		row := fmt.Sprintf("%-8s %-18s %s", e.Timestamp.Format("15:04:05"), e.Type, FormatEvent(e))
		b.WriteString(rowStyle.Render(row))
		b.WriteString("\n")
		shown++
	}
	return b.String()
}

// FormatEvent describes an event in one line.
func FormatEvent(e state.Event) string {
	switch e.Type {
	case state.EventPairAdded:
		return fmt.Sprintf("%s from %s, %s to %s", codeLabel(e.Target), codeLabel(e.NewCenter),
			astro.FormatDate(e.Start), astro.FormatDate(e.End))
	case state.EventPairRemoved:
		return fmt.Sprintf("%s no longer from %s", codeLabel(e.Target), codeLabel(e.OldCenter))
	case state.EventRecentered:
		return fmt.Sprintf("%s now from %s (was %s)", codeLabel(e.Target), codeLabel(e.NewCenter), codeLabel(e.OldCenter))
	case state.EventCoverageChange:
		return fmt.Sprintf("%s covers %s to %s", codeLabel(e.Target),
			astro.FormatDate(e.Start), astro.FormatDate(e.End))
	}
	return codeLabel(e.Target)
}
