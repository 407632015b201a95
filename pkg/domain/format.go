package domain

import "strings"

// Format renders a path tree on one line, for logs and reports:
//
//	charge -> switch(orders | refunds)
//
// Parallel branches use par(...), loops loop(...) or loop+(...) when the
// body runs at least once, independent loop passes (...)*, stops @id and
// dangling references ?ref.
func Format(e Element) string {
	var sb strings.Builder
	format(&sb, e)
	return sb.String()
}

func format(sb *strings.Builder, e Element) {
	switch v := e.(type) {
	case Atomic:
		sb.WriteString(v.Key())
		if len(v.Continuation) > 0 {
			sb.WriteString(" -> ")
			formatList(sb, v.Continuation, " -> ")
		}
	case Sequence:
		if v.Loop {
			sb.WriteString("(")
		}
		if len(v.Items) == 0 {
			sb.WriteString("ε")
		}
		formatList(sb, v.Items, " -> ")
		if v.Loop {
			sb.WriteString(")*")
		}
	case Parallel:
		sb.WriteString("par(")
		formatList(sb, v.Branches, " | ")
		sb.WriteString(")")
	case Switch:
		sb.WriteString("switch(")
		formatList(sb, v.Branches, " | ")
		sb.WriteString(")")
	case Loop:
		if v.MinIterations > 0 {
			sb.WriteString("loop+(")
		} else {
			sb.WriteString("loop(")
		}
		if v.Body != nil {
			format(sb, v.Body)
		}
		sb.WriteString(")")
	case LoopStop:
		sb.WriteString("@" + v.StateID)
	case Unknown:
		sb.WriteString("?" + v.Ref)
	}
}

func formatList(sb *strings.Builder, elems []Element, sep string) {
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(sep)
		}
		format(sb, e)
	}
}
