package build

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
)

// WriteSummary writes what a plan will build and where.
func WriteSummary(w io.Writer, plan *Plan) error {
	var sb strings.Builder
	sb.WriteString(headingStyle.Render("You will build") + "\n")
	writeField(&sb, "EPICS base version", plan.Base)
	writeField(&sb, "require version", plan.Require)
	if plan.Toolchain != "" {
		writeField(&sb, "Cross-compiler toolchain version", plan.Toolchain)
	}
	sb.WriteString("\n" + headingStyle.Render("For locations:") + "\n")
	for _, rp := range plan.Roots {
		sb.WriteString("- " + valueStyle.Render(rp.Root) + "\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeField(sb *strings.Builder, label, value string) {
	fmt.Fprintf(sb, "%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}
