package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/clembu/nfogen/pkg/core/catalog"
	"github.com/clembu/nfogen/pkg/core/report"
)

// consoleChannel is the terminal-backed report.UserChannel.
type consoleChannel struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsoleChannel(cmd *cobra.Command) *consoleChannel {
	in := cmd.InOrStdin()
	if in == nil {
		in = os.Stdin
	}
	return &consoleChannel{
		in:  bufio.NewReader(in),
		out: cmd.OutOrStdout(),
	}
}

func (c *consoleChannel) Say(text string) {
	fmt.Fprintln(c.out, text)
}

func (c *consoleChannel) Ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// tableChooser shows search candidates as a numbered table and reads the
// user's pick. Entering nothing selects no candidate.
type tableChooser struct {
	channel report.UserChannel
}

func newTableChooser(channel report.UserChannel) *tableChooser {
	return &tableChooser{channel: channel}
}

func (t *tableChooser) Choose(candidates []catalog.SearchResult) (int, error) {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "Title", "Original Title", "Year", "ID"})
	for i, c := range candidates {
		year := ""
		if c.Year > 0 {
			year = strconv.Itoa(c.Year)
		}
		tw.AppendRow(table.Row{i + 1, c.Title, c.OriginalTitle, year, c.ID})
	}
	tw.SetStyle(table.StyleLight)

	t.channel.Say("")
	t.channel.Say(tw.Render())

	for {
		answer, err := t.channel.Ask(fmt.Sprintf("Select a match (1-%d, Enter to skip): ", len(candidates)))
		if err != nil {
			return -1, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return -1, nil
		}
		pick, err := strconv.Atoi(answer)
		if err != nil || pick < 1 || pick > len(candidates) {
			t.channel.Say("Invalid selection.")
			continue
		}
		return pick - 1, nil
	}
}

// collectExtraSections offers the optional NOTES and GREETZ free-text
// sections at the end of an interactive session.
func collectExtraSections(m *report.Model, channel report.UserChannel) error {
	for _, name := range []string{"NOTES", "GREETZ"} {
		ok, err := promptYesNo(channel, fmt.Sprintf("Add a %s section? [y/N]: ", name))
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		lines, err := askMultiline(channel, "Enter lines (empty line to finish):")
		if err != nil {
			return err
		}
		m.AppendFreeText(name, lines)
	}
	return nil
}

// askMultiline collects lines until the first empty one.
func askMultiline(channel report.UserChannel, prompt string) ([]string, error) {
	channel.Say(prompt)
	var lines []string
	for {
		line, err := channel.Ask("")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// promptYesNo asks a yes/no question, defaulting to no.
func promptYesNo(channel report.UserChannel, prompt string) (bool, error) {
	answer, err := channel.Ask(prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
