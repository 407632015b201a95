package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.GraphLoader for workflow documents written in YAML or JSON.
//
// Two layouts are accepted and may be mixed. In the flat layout every state sits in
// the top-level list and composites name their children in value:
//
//	entries: [checkout]
//	states:
//	  - {id: checkout, type: sequence, value: [charge, notify]}
//	  - {id: charge, type: "function:knative", value: charge, transition: notify}
//	  - {id: notify, type: event-source, value: receipts}
//
// In the nested layout composites hold their children under states. Nested IDs are
// qualified with their parent ("checkout.charge") and references resolve against the
// enclosing scope first.
type Loader struct {
	path string
	data []byte
}

// New creates a loader reading the document at path on every Load.
func New(path string) *Loader {
	return &Loader{path: path}
}

// FromBytes creates a loader over an in-memory document.
func FromBytes(name string, data []byte) *Loader {
	return &Loader{path: name, data: data}
}

// Load reads, validates and normalizes the document.
func (l *Loader) Load(ctx context.Context) (*domain.Graph, error) {
	data := l.data
	if data == nil {
		var err error
		if data, err = os.ReadFile(l.path); err != nil {
			return nil, fmt.Errorf("failed to read workflow %s: %w", l.path, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(data, graphName(l.path))
}

// Parse turns a raw document into a graph. fallbackName names the graph when the
// document itself does not.
func Parse(data []byte, fallbackName string) (*domain.Graph, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse workflow: %w", err)
	}
	if err := schema.ValidateDocument(raw); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode workflow: %w", err)
	}

	if doc.Name == "" {
		doc.Name = fallbackName
	}
	return Normalize(&doc)
}

func graphName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}
