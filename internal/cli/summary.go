package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/pipeline"
)

// maxOutputLines caps how much captured tool output the summary repeats.
const maxOutputLines = 40

// RenderSummary writes the outcome banner of a run. Colours are used only
// when w is a terminal.
func RenderSummary(w io.Writer, report *pipeline.Report, err error) {
	r := lipgloss.NewRenderer(w)
	okStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	keyStyle := r.NewStyle().Faint(true).Width(10)
	boxStyle := r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	var lines []string
	if report != nil {
		head := fmt.Sprintf("%s %s: %s", report.Mode, report.Unit.Name, report.State)
		switch {
		case err == nil:
			lines = append(lines, okStyle.Render("✔ "+head))
		case report.State == pipeline.Interrupted:
			lines = append(lines, warnStyle.Render("⚠ "+head))
		default:
			lines = append(lines, failStyle.Render("✘ "+head))
		}

		row := func(k, v string) {
			lines = append(lines, keyStyle.Render(k)+v)
		}
		row("run", report.RunID)
		row("duration", report.Duration.Round(time.Millisecond).String())
		if len(report.Assignment.Roles()) > 0 {
			row("roles", report.Assignment.String())
		}
		for _, a := range report.Staged {
			row(a.Role.String(), a.Path)
		}
		if report.Remote != "" && report.State == pipeline.Transferred {
			row("remote", report.Remote)
		}
	}
	if err != nil {
		lines = append(lines, failStyle.Render(err.Error()))
	}

	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))

	if out := fault.OutputOf(err); len(out) > 0 {
		fmt.Fprintln(w, tail(string(out), maxOutputLines))
	}
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return fmt.Sprintf("... (%d lines omitted)\n%s", len(lines)-n, strings.Join(lines[len(lines)-n:], "\n"))
}
