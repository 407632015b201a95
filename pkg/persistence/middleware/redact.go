package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/ports"
)

const mask = "***"

type redactMiddleware struct {
	next     ports.ResultStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks the parts of action values matching any
// pattern before the extraction is saved (service URLs, connection
// strings). Action keys are masked the same way; keys that collapse onto
// the same masked name have their paths merged.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ResultStore) ports.ResultStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, ext *domain.Extraction) error {
	// Work on a copy: the caller keeps the unmasked result.
	cloned := *ext
	cloned.Actions = make(map[string]domain.ActionPaths, len(ext.Actions))
	for _, key := range ext.ActionNames() {
		p := ext.Actions[key]
		masked := m.redact(key)
		merged := cloned.Actions[masked]
		merged.Inbound = append(merged.Inbound, m.redactAll(p.Inbound)...)
		merged.Outbound = append(merged.Outbound, m.redactAll(p.Outbound)...)
		cloned.Actions[masked] = merged
	}
	return m.next.Save(ctx, &cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, workflow string) (*domain.Extraction, error) {
	return m.next.Load(ctx, workflow)
}

func (m *redactMiddleware) Delete(ctx context.Context, workflow string) error {
	return m.next.Delete(ctx, workflow)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func (m *redactMiddleware) redact(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, mask)
	}
	return s
}

func (m *redactMiddleware) redactAll(elems []domain.Element) []domain.Element {
	if elems == nil {
		return nil
	}
	out := make([]domain.Element, len(elems))
	for i, e := range elems {
		out[i] = m.redactElement(e)
	}
	return out
}

func (m *redactMiddleware) redactElement(e domain.Element) domain.Element {
	switch v := e.(type) {
	case domain.Atomic:
		v.Value = m.redact(v.Value)
		v.Continuation = m.redactAll(v.Continuation)
		return v
	case domain.Sequence:
		v.Items = m.redactAll(v.Items)
		return v
	case domain.Parallel:
		v.Branches = m.redactAll(v.Branches)
		return v
	case domain.Switch:
		v.Branches = m.redactAll(v.Branches)
		return v
	case domain.Loop:
		if v.Body != nil {
			v.Body = m.redactElement(v.Body)
		}
		return v
	}
	return e
}
