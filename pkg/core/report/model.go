// Package report holds the presentation model of an NFO report and the
// three operations over it: Merge (build it from the metadata sources),
// Repair (interactive line-by-line review) and Render (deterministic
// text output).
package report

import "strings"

// NA is the placeholder value for fields no source could fill.
const NA = "N/A"

// Line is one label/value row. Value is always a fully formatted string
// or the NA placeholder, never a raw number. Present=false marks a line
// dropped during repair; it is skipped at render, never shown blank.
// A Line with an empty Label renders its Value raw, without the label
// column (free-text sections such as NOTES).
type Line struct {
	Label   string
	Value   string
	Present bool
}

// Section is a named group of lines. Track sections are named
// "AUDIO #1", "SUBTITLE #2", ... in 1-based stream order.
type Section struct {
	Name  string
	Lines []Line
}

// Model is the ordered, presentation-agnostic report. It is created by
// Merge, optionally mutated by Repair, and consumed by Render. Summary
// is the compact release line shown under the title inside the banner
// (Source | Resolution | Video | Audio).
type Model struct {
	Title    string
	Summary  string
	Sections []Section
}

// AppendFreeText adds a section of raw text lines without the label
// column. Blank lines are skipped; an all-blank input adds nothing.
func (m *Model) AppendFreeText(name string, lines []string) {
	sec := Section{Name: name}
	for _, text := range lines {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		sec.Lines = append(sec.Lines, Line{Value: text, Present: true})
	}
	if len(sec.Lines) > 0 {
		m.Sections = append(m.Sections, sec)
	}
}

// visibleLines counts the section's lines that survive rendering.
func (s *Section) visibleLines() int {
	n := 0
	for _, line := range s.Lines {
		if line.Present {
			n++
		}
	}
	return n
}
