package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowpaths/internal/validator"
	"github.com/aretw0/flowpaths/pkg/domain"
)

// ExtractionMarkdown renders a per-action extraction as markdown.
func ExtractionMarkdown(ext *domain.Extraction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", ext.Workflow)
	fmt.Fprintf(&sb, "%d actions extracted.\n", len(ext.Actions))

	for _, name := range ext.ActionNames() {
		p := ext.Actions[name]
		fmt.Fprintf(&sb, "\n## %s\n\n", name)
		sb.WriteString("| # | inbound | outbound |\n|---|---|---|\n")
		for i := range p.Inbound {
			var out domain.Element = domain.Sequence{}
			if i < len(p.Outbound) {
				out = p.Outbound[i]
			}
			fmt.Fprintf(&sb, "| %d | `%s` | `%s` |\n", i+1, cell(domain.Format(p.Inbound[i])), cell(domain.Format(out)))
		}
	}

	if len(ext.Failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for entry, msg := range ext.Failures {
			fmt.Fprintf(&sb, "- **%s**: %s\n", entry, msg)
		}
	}
	return sb.String()
}

// PathsMarkdown renders per-target reports as markdown.
func PathsMarkdown(reports []domain.TargetReport) string {
	var sb strings.Builder
	for i, r := range reports {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## %s\n\n", r.Target)
		if r.Err != nil {
			fmt.Fprintf(&sb, "> %v\n", r.Err)
			continue
		}
		for _, route := range r.Routes {
			fmt.Fprintf(&sb, "- route: `%s`\n", strings.Join(route.States(), " / "))
		}
		if len(r.Routes) > 0 {
			sb.WriteString("\n")
		}
		for j, p := range r.Paths {
			fmt.Fprintf(&sb, "%d. `%s`\n", j+1, domain.Format(p))
		}
	}
	return sb.String()
}

// ValidationMarkdown renders a validation report as markdown.
func ValidationMarkdown(name string, r validator.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Validation: %s\n\n", name)
	if len(r.Issues) == 0 {
		sb.WriteString("Graph is valid! ✅\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "%d errors, %d warnings.\n\n", len(r.Errors()), len(r.Warnings()))
	sb.WriteString("| severity | code | state | message |\n|---|---|---|---|\n")
	for _, is := range r.Issues {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", is.Severity, is.Code, is.StateID, cell(is.Message))
	}
	return sb.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
