// Package console renders a run's accumulated state for the terminal:
// status header, per-step sections with expand/collapse, findings sorted by
// severity, and the flattened log stream. It also supports jq filtering of
// the run's JSON document and a plain-text export for copying.
package console

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/shipsec/reconcraft/client"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	pendingStyle = lipgloss.NewStyle().Faint(true)
	logStyle     = lipgloss.NewStyle().Faint(true)

	darkStatusStyles = map[client.StepStatus]lipgloss.Style{
		client.StepSucceeded: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		client.StepFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		client.StepRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
	lightStatusStyles = map[client.StepStatus]lipgloss.Style{
		client.StepSucceeded: lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
		client.StepFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
		client.StepRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
	}

	darkSeverityStyles = map[client.Severity]lipgloss.Style{
		client.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		client.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		client.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("202")),
		client.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
	lightSeverityStyles = map[client.Severity]lipgloss.Style{
		client.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("26")),
		client.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		client.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("166")),
		client.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
	}
)

// Options controls rendering.
type Options struct {
	// Collapsed holds node ids of steps whose detail is hidden. A nil map
	// leaves every step expanded.
	Collapsed map[string]bool
	// MaxLogLines truncates each step's log tail; 0 shows everything.
	MaxLogLines int
	// Plain disables styling, producing copy/paste-friendly text.
	Plain bool
	// Light selects colors legible on light terminal backgrounds.
	Light bool
}

// Render formats the run for terminal display.
func Render(run *client.Run, opts Options) string {
	if run == nil {
		return ""
	}
	var b strings.Builder

	style := func(s lipgloss.Style, text string) string {
		if opts.Plain {
			return text
		}
		return s.Render(text)
	}

	b.WriteString(style(headerStyle, fmt.Sprintf("%s (%s)", run.WorkflowName, run.ID)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("status: %s", style(statusStyle(client.StepStatus(run.Status), opts), string(run.Status))))
	if run.Duration > 0 {
		b.WriteString(fmt.Sprintf("  duration: %s", time.Duration(run.Duration*float64(time.Second)).Round(time.Millisecond)))
	}
	b.WriteString("\n")

	if run.Summary != nil {
		s := run.Summary
		b.WriteString(fmt.Sprintf("findings: %d (critical %d, high %d, medium %d, low %d)\n",
			s.FindingsCount, s.Severities.Critical, s.Severities.High, s.Severities.Medium, s.Severities.Low))
	}

	for _, step := range run.Steps {
		marker := "-"
		if opts.Collapsed[step.NodeID] {
			marker = "+"
		}
		b.WriteString(fmt.Sprintf("\n%s %s [%s]\n", marker, style(headerStyle, step.Name),
			style(statusStyle(step.Status, opts), string(step.Status))))
		if opts.Collapsed[step.NodeID] {
			continue
		}

		logs := step.Logs
		if opts.MaxLogLines > 0 && len(logs) > opts.MaxLogLines {
			b.WriteString(fmt.Sprintf("  ... %d earlier lines\n", len(logs)-opts.MaxLogLines))
			logs = logs[len(logs)-opts.MaxLogLines:]
		}
		for _, line := range logs {
			b.WriteString("  " + style(logStyle, line) + "\n")
		}

		for _, f := range sortFindings(step.Findings) {
			loc := ""
			if f.Service != "" {
				loc = " " + f.Service
				if f.Port > 0 {
					loc += fmt.Sprintf(":%d", f.Port)
				}
			}
			b.WriteString(fmt.Sprintf("  %s%s %s\n",
				style(severityStyle(f.Severity, opts), "["+string(f.Severity)+"]"), loc, f.Title))
			if f.Description != "" {
				b.WriteString("      " + f.Description + "\n")
			}
		}
	}

	return b.String()
}

// CopyText is the unstyled, fully expanded export of the run, suitable for
// the clipboard or a report attachment.
func CopyText(run *client.Run) string {
	return Render(run, Options{Plain: true})
}

// RenderLogs formats the flattened log stream produced by the reconciler.
func RenderLogs(logs []string, plain bool) string {
	var b strings.Builder
	for _, line := range logs {
		if plain {
			b.WriteString(line)
		} else {
			b.WriteString(logStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func statusStyle(status client.StepStatus, opts Options) lipgloss.Style {
	if opts.Plain {
		return lipgloss.NewStyle()
	}
	styles := darkStatusStyles
	if opts.Light {
		styles = lightStatusStyles
	}
	if s, ok := styles[status]; ok {
		return s
	}
	return pendingStyle
}

func severityStyle(sev client.Severity, opts Options) lipgloss.Style {
	styles := darkSeverityStyles
	if opts.Light {
		styles = lightSeverityStyles
	}
	if s, ok := styles[sev]; ok {
		return s
	}
	return pendingStyle
}

// sortFindings orders findings most severe first, stable within a severity.
func sortFindings(findings []client.Finding) []client.Finding {
	out := append([]client.Finding(nil), findings...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}
