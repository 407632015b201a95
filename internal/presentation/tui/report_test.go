package tui

import (
	"errors"
	"testing"

	"github.com/aretw0/flowpaths/internal/validator"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractionMarkdown(t *testing.T) {
	ext := domain.NewExtraction("checkout")
	ext.Add("charge", domain.Sequence{}, domain.Switch{Branches: []domain.Element{
		domain.Atomic{StateID: "F2", Value: "orders"},
		domain.Atomic{StateID: "F3", Value: "refunds"},
	}})
	ext.Fail("broken", errors.New("boom"))

	md := ExtractionMarkdown(ext)
	assert.Contains(t, md, "# checkout")
	assert.Contains(t, md, "## charge")
	assert.Contains(t, md, `| 1 | `+"`ε`"+` | `+"`switch(orders \\| refunds)`"+` |`)
	assert.Contains(t, md, "- **broken**: boom")
}

func TestPathsMarkdown(t *testing.T) {
	md := PathsMarkdown([]domain.TargetReport{
		{
			Target: "orders",
			Routes: []domain.Route{{Target: "E.S.F2", Hops: []domain.Hop{{Chain: []string{"E"}}, {Scope: "E", Chain: []string{"E.F1", "E.S"}}}}},
			Paths:  []domain.Element{domain.Atomic{StateID: "E.F1", Value: "charge", Continuation: []domain.Element{domain.Atomic{StateID: "E.S.F2", Value: "orders"}}}},
		},
		{Target: "ghost", Err: domain.ErrTargetNotFound},
	})

	assert.Contains(t, md, "- route: `E / E.F1 / E.S`")
	assert.Contains(t, md, "1. `charge -> orders`")
	assert.Contains(t, md, "## ghost\n\n> ")
}

func TestValidationMarkdown(t *testing.T) {
	assert.Contains(t, ValidationMarkdown("ok", validator.Report{}), "Graph is valid!")

	md := ValidationMarkdown("broken", validator.Report{Issues: []validator.Issue{
		{Severity: validator.SeverityError, Code: "dangling-transition", StateID: "a", Message: "to b|c"},
	}})
	assert.Contains(t, md, "1 errors, 0 warnings.")
	assert.Contains(t, md, `| error | dangling-transition | a | to b\|c |`)
}
