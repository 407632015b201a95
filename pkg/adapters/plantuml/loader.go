// Package plantuml loads workflow graphs from PlantUML state diagrams.
//
// Only the structural subset is read: transitions ("a --> b : label"), the
// "[*]" pseudo state, composite blocks ("state X <<parallel>> { ... }") and
// "x : type = Operation State" annotations. Everything else is ignored.
package plantuml

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/flowpaths/pkg/domain"
)

// Loader implements ports.GraphLoader for diagram files.
type Loader struct {
	path string
	src  []byte
}

// New creates a loader reading the diagram at path on every Load.
func New(path string) *Loader {
	return &Loader{path: path}
}

// FromBytes creates a loader over an in-memory diagram.
func FromBytes(name string, src []byte) *Loader {
	return &Loader{path: name, src: src}
}

// Load parses the diagram.
func (l *Loader) Load(ctx context.Context) (*domain.Graph, error) {
	var r io.Reader
	if l.src != nil {
		r = bytes.NewReader(l.src)
	} else {
		f, err := os.Open(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open diagram %s: %w", l.path, err)
		}
		defer f.Close()
		r = f
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(l.path), filepath.Ext(l.path))
	g, err := Parse(r, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diagram %s: %w", l.path, err)
	}
	return g, nil
}
