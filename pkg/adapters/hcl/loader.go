// Package hcl loads workflow graphs written in HCL.
//
//	name    = "checkout"
//	entries = ["E"]
//
//	state "sequence" "E" {
//	  state "function" "F1" {
//	    value = "F1"
//	    next  = ["S"]
//	  }
//	  state "switch" "S" {
//	    state "function" "F2" { value = "F2" }
//	    state "function" "F3" { value = "F3" }
//	  }
//	}
//
// The first label is the state type and the second its ID. Blocks carry the same
// fields as the YAML workflow format and share its normalization.
package hcl

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/flowpaths/pkg/adapters/workflow"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// file is the top-level structure of an HCL workflow.
type file struct {
	Name        string        `hcl:"name,optional"`
	Description string        `hcl:"description,optional"`
	Entries     []string      `hcl:"entries,optional"`
	States      []*stateBlock `hcl:"state,block"`
}

type stateBlock struct {
	Type        string             `hcl:"type,label"`
	ID          string             `hcl:"id,label"`
	Value       *string            `hcl:"value,optional"`
	Children    []string           `hcl:"children,optional"`
	Next        []string           `hcl:"next,optional"`
	Initial     []string           `hcl:"initial,optional"`
	Dependent   *bool              `hcl:"dependent,optional"`
	Description string             `hcl:"description,optional"`
	Transitions []*transitionBlock `hcl:"transition,block"`
	States      []*stateBlock      `hcl:"state,block"`
}

type transitionBlock struct {
	To    string `hcl:"to,label"`
	Label string `hcl:"label,optional"`
}

// Loader implements ports.GraphLoader for HCL workflow files.
type Loader struct {
	path string
	src  []byte
}

// New creates a loader parsing the file at path on every Load.
func New(path string) *Loader {
	return &Loader{path: path}
}

// FromBytes creates a loader over in-memory HCL source. filename is used in diagnostics.
func FromBytes(filename string, src []byte) *Loader {
	return &Loader{path: filename, src: src}
}

// Load parses and decodes the file, then normalizes it like a YAML workflow.
func (l *Loader) Load(ctx context.Context) (*domain.Graph, error) {
	parser := hclparse.NewParser()

	var (
		f    file
		name = strings.TrimSuffix(filepath.Base(l.path), filepath.Ext(l.path))
	)

	var (
		hclFile *hcl.File
		diags   hcl.Diagnostics
	)
	if l.src != nil {
		hclFile, diags = parser.ParseHCL(l.src, l.path)
	} else {
		hclFile, diags = parser.ParseHCLFile(l.path)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", l.path, diags)
	}

	diags = gohcl.DecodeBody(hclFile.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", l.path, diags)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &workflow.Document{
		Name:        f.Name,
		Description: f.Description,
		Entries:     f.Entries,
		States:      specs(f.States),
	}
	if doc.Name == "" {
		doc.Name = name
	}
	return workflow.Normalize(doc)
}

func specs(blocks []*stateBlock) []workflow.StateSpec {
	out := make([]workflow.StateSpec, 0, len(blocks))
	for _, b := range blocks {
		s := workflow.StateSpec{
			ID:          b.ID,
			Type:        b.Type,
			Value:       b.Children,
			Transition:  b.Next,
			Initial:     b.Initial,
			Dependent:   b.Dependent,
			Description: b.Description,
			States:      specs(b.States),
		}
		if b.Value != nil {
			s.Value = append([]string{*b.Value}, s.Value...)
		}
		for _, t := range b.Transitions {
			s.Transitions = append(s.Transitions, workflow.TransitionSpec{To: t.To, Label: t.Label})
		}
		out = append(out, s)
	}
	return out
}
