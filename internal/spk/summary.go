package spk

import (
	"fmt"
	"math"
	"strings"

	"github.com/litescript/ls-ephem/internal/astro"
)

// Summary describes the kernel one source file at a time: the file's overall
// time range, then one line per segment as "center -> target  names".
func (k *Kernel) Summary() string {
	files := k.Files()
	if len(files) == 0 {
		return "Kernel with no segments"
	}

	bySource := make(map[string][]*Segment, len(files))
	for _, s := range k.Segments {
		bySource[s.source] = append(bySource[s.source], s)
	}

	lines := make([]string, 0, len(k.Segments)+2*len(files))
	for i, f := range files {
		if i == 0 {
			lines = append(lines, fmt.Sprintf("Segments from kernel file '%s':", f))
		} else {
			lines = append(lines, fmt.Sprintf("And from kernel file '%s':", f))
		}

		segs := bySource[f]
		start, end := segs[0].start, segs[0].end
		for _, s := range segs[1:] {
			start = min(start, s.start)
			end = max(end, s.end)
		}
		lines = append(lines, fmt.Sprintf("  JD %.2f - JD %.2f  (%s through %s)",
			start, end, astro.FormatDate(math.Trunc(start)), astro.FormatDate(math.Trunc(end))))

		for _, s := range segs {
			lines = append(lines, formatEdge(s.center, s.target))
		}
	}
	return strings.Join(lines, "\n")
}

func formatEdge(center, target Code) string {
	line := fmt.Sprintf("    %3d -> %-3d", center, target)
	cn, tn := DisplayName(center), DisplayName(target)
	if cn == "" && tn == "" {
		return line
	}
	return fmt.Sprintf("%s  %s -> %s", line, nameOr(cn, center), nameOr(tn, target))
}

func nameOr(name string, code Code) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%d", code)
}
