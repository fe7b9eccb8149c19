package report

import "strings"

const (
	// lineWidth is the fixed width of banner lines.
	lineWidth = 78
	// labelWidth is the dot-padded label column, before ": ".
	labelWidth = 27
)

// Render produces the final report text. It is pure and total: the same
// model always renders the same bytes, missing data never fails, and
// lines with Present=false are skipped. Sections whose lines have all
// been dropped are suppressed entirely, banner included.
func Render(m *Model) string {
	var b strings.Builder

	banner := strings.Repeat("=", lineWidth)
	divider := strings.Repeat("-", lineWidth)

	b.WriteString(banner)
	b.WriteByte('\n')
	b.WriteString(center(m.Title, lineWidth))
	b.WriteByte('\n')
	if m.Summary != "" {
		b.WriteString(center(m.Summary, lineWidth))
		b.WriteByte('\n')
	}
	b.WriteString(banner)
	b.WriteByte('\n')

	for i := range m.Sections {
		sec := &m.Sections[i]
		if sec.visibleLines() == 0 {
			continue
		}
		b.WriteByte('\n')
		b.WriteString(divider)
		b.WriteByte('\n')
		b.WriteString(center(sec.Name, lineWidth))
		b.WriteByte('\n')
		b.WriteString(divider)
		b.WriteByte('\n')
		for _, line := range sec.Lines {
			if !line.Present {
				continue
			}
			b.WriteString(renderLine(line))
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// renderLine lays out one row: label dot-padded to the fixed column,
// then ": value". Lines without a label are raw text.
func renderLine(l Line) string {
	if l.Label == "" {
		return l.Value
	}
	label := l.Label
	if pad := labelWidth - len([]rune(label)); pad > 0 {
		label += strings.Repeat(".", pad)
	}
	return label + ": " + l.Value
}

// center pads a string on the left so it sits centered in width. No
// trailing padding is added.
func center(s string, width int) string {
	pad := (width - len([]rune(s))) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
