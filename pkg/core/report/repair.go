package report

import (
	"fmt"
	"strings"
)

// UserChannel is the line-oriented prompt/response exchange the repair
// engine talks through. A scripted implementation drives the engine
// headlessly in tests.
type UserChannel interface {
	// Say displays text to the user.
	Say(text string)
	// Ask displays a prompt and returns one line of user input.
	Ask(prompt string) (string, error)
}

// Repair walks every line of every section exactly once, in stored
// order, offering a three-way choice: keep the value, enter a
// replacement, or drop the line. Decisions mutate the model in place;
// dropped lines get Present=false and disappear at render. Filled lines
// are reviewed the same as NA lines: this is a full-report review.
func Repair(m *Model, ch UserChannel) error {
	for si := range m.Sections {
		sec := &m.Sections[si]
		if len(sec.Lines) == 0 {
			continue
		}
		ch.Say("")
		ch.Say("--- " + sec.Name + " ---")
		for li := range sec.Lines {
			if err := repairLine(&sec.Lines[li], ch); err != nil {
				return err
			}
		}
	}
	return nil
}

func repairLine(line *Line, ch UserChannel) error {
	ch.Say(renderLine(*line))
	for {
		answer, err := ch.Ask("[Enter] keep, (e)dit, (d)rop: ")
		if err != nil {
			return fmt.Errorf("repair input: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "k", "keep":
			return nil
		case "e", "edit":
			value, err := ch.Ask("New value: ")
			if err != nil {
				return fmt.Errorf("repair input: %w", err)
			}
			value = strings.TrimSpace(value)
			if value == "" {
				value = NA
			}
			line.Value = value
			return nil
		case "d", "drop":
			line.Present = false
			return nil
		default:
			ch.Say("Invalid choice: keep (Enter), e to edit, d to drop.")
		}
	}
}
