package plantuml

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/aretw0/flowpaths/pkg/domain"
)

const pseudoState = "[*]"

var (
	reTransition = regexp.MustCompile(`^("[^"]+"|\[\*\]|[\w\-.]+)\s*-+>\s*("[^"]+"|\[\*\]|[\w\-.]+)(?:\s*:\s*(.*))?$`)
	reComposite  = regexp.MustCompile(`^state\s+("[^"]+"|[\w\-.]+)(?:\s+<<(\w+)>>)?\s*\{$`)
	reDeclare    = regexp.MustCompile(`^state\s+("[^"]+"|[\w\-.]+)(?:\s+<<(\w+)>>)?$`)
	reAttribute  = regexp.MustCompile(`^("[^"]+"|[\w\-.]+)\s*:\s*type\s*=\s*(.+)$`)
	reNote       = regexp.MustCompile(`^("[^"]+"|[\w\-.]+)\s*:`)
	reInvalid    = regexp.MustCompile(`\W`)
)

// stereotypes maps composite stereotypes onto state kinds.
var stereotypes = map[string]domain.Kind{
	"":         domain.KindSequence,
	"sequence": domain.KindSequence,
	"parallel": domain.KindParallel,
	"fork":     domain.KindParallel,
	"choice":   domain.KindSwitch,
	"switch":   domain.KindSwitch,
	"loop":     domain.KindLoop,
	"foreach":  domain.KindLoop,
}

// stateTypes maps the "type = ..." annotation onto an action type.
var stateTypes = map[string]domain.ActionType{
	"operation state": domain.ActionFunction,
	"event state":     domain.ActionEventSource,
	"function":        domain.ActionFunction,
	"database":        domain.ActionDatabase,
}

// Sanitize turns a diagram label into a state name: quotes are dropped and
// every non-word character becomes an underscore.
func Sanitize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(strings.TrimPrefix(name, `"`), `"`)
	name = reInvalid.ReplaceAllString(name, "_")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

type parser struct {
	graph  *domain.Graph
	scopes []string // open composites, innermost last
	line   int
}

// Parse reads a state diagram. "[*] --> x" marks x as initial in the enclosing
// composite (or as a graph entry at top level) and "x --> [*]" is dropped.
func Parse(r io.Reader, name string) (*domain.Graph, error) {
	p := &parser{graph: domain.NewGraph(name)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read diagram: %w", err)
	}
	if len(p.scopes) > 0 {
		return nil, fmt.Errorf("unclosed composite state %s", p.scopes[len(p.scopes)-1])
	}
	return p.graph, nil
}

func (p *parser) parseLine(line string) error {
	switch {
	case line == "", strings.HasPrefix(line, "'"), strings.HasPrefix(line, "@"),
		strings.HasPrefix(line, "stateDiagram"), strings.HasPrefix(line, "hide "),
		strings.HasPrefix(line, "skinparam"):
		return nil
	case line == "}":
		if len(p.scopes) == 0 {
			return fmt.Errorf("unexpected }")
		}
		p.scopes = p.scopes[:len(p.scopes)-1]
		return nil
	}

	if m := reComposite.FindStringSubmatch(line); m != nil {
		kind, ok := stereotypes[strings.ToLower(m[2])]
		if !ok {
			return fmt.Errorf("unknown stereotype <<%s>>", m[2])
		}
		id := p.declare(m[1])
		s, _ := p.graph.State(id)
		s.Kind = kind
		s.Action, s.Value = "", ""
		p.scopes = append(p.scopes, id)
		return nil
	}
	if m := reDeclare.FindStringSubmatch(line); m != nil {
		p.declare(m[1])
		return nil
	}
	if m := reTransition.FindStringSubmatch(line); m != nil {
		p.transition(m[1], m[2], strings.TrimSpace(m[3]))
		return nil
	}
	if m := reAttribute.FindStringSubmatch(line); m != nil {
		id := p.declare(m[1])
		s, _ := p.graph.State(id)
		if s.Kind == domain.KindAtomic {
			s.Action = stateTypes[strings.ToLower(strings.TrimSpace(m[2]))]
		}
		return nil
	}
	if m := reNote.FindStringSubmatch(line); m != nil {
		p.declare(m[1])
	}
	return nil
}

func (p *parser) scope() string {
	if len(p.scopes) == 0 {
		return ""
	}
	return p.scopes[len(p.scopes)-1]
}

// declare registers the state in the current scope unless it already exists
// there, returning its qualified ID.
func (p *parser) declare(label string) string {
	local := Sanitize(label)
	id := domain.JoinID(p.scope(), local)
	if _, ok := p.graph.State(id); ok {
		return id
	}
	_ = p.graph.AddState(domain.State{
		ID:     id,
		Kind:   domain.KindAtomic,
		Value:  local,
		Parent: p.scope(),
	})
	return id
}

func (p *parser) transition(src, dst, label string) {
	switch {
	case src == pseudoState && dst == pseudoState:
	case src == pseudoState:
		id := p.declare(dst)
		if parent := p.scope(); parent != "" {
			s, _ := p.graph.State(parent)
			if !slices.Contains(s.Initial, id) {
				s.Initial = append(s.Initial, id)
			}
		} else if !slices.Contains(p.graph.Entries, id) {
			p.graph.Entries = append(p.graph.Entries, id)
		}
	case dst == pseudoState:
		p.declare(src)
	default:
		p.graph.AddTransition(p.declare(src), p.declare(dst), label)
	}
}
