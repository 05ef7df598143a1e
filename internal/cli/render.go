package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/stemma-io/stemma/internal/evaluate"
	"github.com/stemma-io/stemma/internal/rules"
	"github.com/stemma-io/stemma/internal/tui"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// renderReport writes the human-readable validation report. Diagnostics go
// first, one line per finding, followed by a one-line summary of the verdict.
func renderReport(w io.Writer, report *evaluate.Report, ruleset rules.Ruleset, colored bool) {
	for _, d := range report.Diagnostics {
		fmt.Fprintf(w, "%s %s: %s\n", severityTag(d.Severity, colored), d.Check, d.Message)
	}
	if len(report.Diagnostics) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, summaryLine(report, ruleset, colored))
}

func severityTag(severity stemma.Severity, colored bool) string {
	var symbol string
	var style lipgloss.Style
	switch severity {
	case stemma.SeverityViolation:
		symbol, style = tui.SymbolCross, tui.ErrorStyle
	case stemma.SeverityWarning:
		symbol, style = "!", tui.WarningStyle
	default:
		symbol, style = tui.SymbolBullet, tui.InfoStyle
	}
	if !colored {
		return symbol
	}
	return style.Render(symbol)
}

func summaryLine(report *evaluate.Report, ruleset rules.Ruleset, colored bool) string {
	violations, warnings, _ := countBySeverity(report.Diagnostics)

	var line string
	var style lipgloss.Style
	switch report.Verdict {
	case stemma.VerdictSuccess:
		line = fmt.Sprintf("%s dataset complies with ruleset %s", tui.SymbolCheck, ruleset.Name)
		style = tui.SuccessStyle
	case stemma.VerdictWarning:
		line = fmt.Sprintf("! dataset complies with ruleset %s, %d warning(s)", ruleset.Name, warnings)
		style = tui.WarningStyle
	case stemma.VerdictViolation:
		line = fmt.Sprintf("%s dataset violates ruleset %s: %d violation(s), %d warning(s)",
			tui.SymbolCross, ruleset.Name, violations, warnings)
		style = tui.ErrorStyle
	default:
		line = fmt.Sprintf("%s dataset cannot be resolved under ruleset %s", tui.SymbolCross, ruleset.Name)
		style = tui.ErrorStyle
	}

	if !colored {
		return line
	}
	return style.Render(line)
}

func countBySeverity(diags []stemma.Diagnostic) (violations, warnings, infos int) {
	for _, d := range diags {
		switch d.Severity {
		case stemma.SeverityViolation:
			violations++
		case stemma.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return violations, warnings, infos
}
