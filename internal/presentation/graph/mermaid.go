package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// Overlay highlights one located route on the rendered graph.
type Overlay struct {
	Route  []string
	Target string
}

// GenerateMermaid produces a Mermaid flowchart of the state graph.
// Composites become subgraphs and atomic states are shaped by action:
// - Function: [[Subroutine]]
// - Database: [(Cylinder)]
// - Event source: >Flag]
// - Default: [Rectangle]
// Transitions to states that are not in the graph are drawn dotted.
func GenerateMermaid(g *domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	var roots []string
	for _, id := range g.Order {
		if g.States[id].Parent == "" {
			roots = append(roots, id)
		}
	}
	for _, id := range roots {
		writeState(&sb, g, id, 1)
	}

	if entries := g.RootScope().Initial; len(entries) > 0 {
		sb.WriteString("    __start((\"start\"))\n")
		for _, id := range entries {
			fmt.Fprintf(&sb, "    __start --> %s\n", sanitizeMermaidID(id))
		}
	}

	for _, t := range g.Transitions {
		arrow := "-->"
		if _, ok := g.State(t.To); !ok {
			arrow = "-.->"
		}
		if t.Label != "" {
			safeLabel := strings.ReplaceAll(t.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safeLabel)
			if _, ok := g.State(t.To); !ok {
				arrow = fmt.Sprintf("-. \"%s\" .->", safeLabel)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(t.From), arrow, sanitizeMermaidID(t.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high contrast regardless of theme.
		sb.WriteString("    classDef route fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef target fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Route {
			safeID := sanitizeMermaidID(id)
			if id == overlay.Target || seen[safeID] || safeID == "" {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s route;\n", safeID)
		}
		if overlay.Target != "" {
			fmt.Fprintf(&sb, "    class %s target;\n", sanitizeMermaidID(overlay.Target))
		}
	}

	return sb.String()
}

func writeState(sb *strings.Builder, g *domain.Graph, id string, depth int) {
	s := g.States[id]
	indent := strings.Repeat("    ", depth)
	safeID := sanitizeMermaidID(id)
	name := domain.LocalName(id)

	if s.Kind.Composite() {
		title := fmt.Sprintf("%s (%s)", name, s.Kind)
		if s.Kind == domain.KindLoop {
			title = "↻ " + title
		}
		fmt.Fprintf(sb, "%ssubgraph %s[\"%s\"]\n", indent, safeID, title)
		for _, child := range s.Children {
			if _, ok := g.States[child]; ok {
				writeState(sb, g, child, depth+1)
			}
		}
		fmt.Fprintf(sb, "%send\n", indent)
		return
	}

	opener, closer := "[", "]"
	switch {
	case s.Action == domain.ActionDatabase:
		opener, closer = "[(", ")]"
	case s.Action == domain.ActionEventSource:
		opener, closer = ">", "]"
	case strings.HasPrefix(string(s.Action), string(domain.ActionFunction)):
		opener, closer = "[[", "]]"
	}

	label := name
	if s.Value != "" && s.Value != name {
		label = fmt.Sprintf("%s <br/> %s", name, s.Value)
	}
	if !s.Kind.Valid() {
		label = fmt.Sprintf("%s <br/> ⚠ %s", label, s.Kind)
	}
	fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, safeID, opener, strings.ReplaceAll(label, "\"", "'"), closer)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
