package domain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ActionPaths holds every inbound path (prefix leading to an action occurrence)
// and every outbound path (continuation following it) of one action.
type ActionPaths struct {
	Inbound  []Element
	Outbound []Element
}

type actionPathsWire struct {
	Inbound  []Node `json:"inbound" yaml:"inbound"`
	Outbound []Node `json:"outbound" yaml:"outbound"`
}

func (p ActionPaths) wire() actionPathsWire {
	return actionPathsWire{Inbound: EncodeAll(p.Inbound), Outbound: EncodeAll(p.Outbound)}
}

// MarshalJSON encodes both path lists with the element codec.
func (p ActionPaths) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire())
}

// MarshalYAML mirrors MarshalJSON for yaml.v3.
func (p ActionPaths) MarshalYAML() (any, error) {
	return p.wire(), nil
}

// UnmarshalJSON decodes both path lists with the element codec.
func (p *ActionPaths) UnmarshalJSON(data []byte) error {
	var w actionPathsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	in, err := DecodeAll(w.Inbound)
	if err != nil {
		return err
	}
	out, err := DecodeAll(w.Outbound)
	if err != nil {
		return err
	}
	p.Inbound, p.Outbound = in, out
	return nil
}

// Extraction is the per-action result of analyzing one workflow.
type Extraction struct {
	ID        uuid.UUID              `json:"id" yaml:"id"`
	Workflow  string                 `json:"workflow" yaml:"workflow"`
	CreatedAt time.Time              `json:"created_at" yaml:"created_at"`
	Actions   map[string]ActionPaths `json:"actions" yaml:"actions"`

	// Failures maps an entry state to the error that aborted its expansion.
	Failures map[string]string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// NewExtraction creates an empty extraction with a fresh ID.
func NewExtraction(workflow string) *Extraction {
	return &Extraction{
		ID:        uuid.New(),
		Workflow:  workflow,
		CreatedAt: time.Now().UTC(),
		Actions:   make(map[string]ActionPaths),
	}
}

// Add records one inbound/outbound pair for an action.
func (x *Extraction) Add(action string, inbound, outbound Element) {
	p := x.Actions[action]
	p.Inbound = append(p.Inbound, inbound)
	p.Outbound = append(p.Outbound, outbound)
	x.Actions[action] = p
}

// Fail records the failure of one entry state.
func (x *Extraction) Fail(entry string, err error) {
	if x.Failures == nil {
		x.Failures = make(map[string]string)
	}
	x.Failures[entry] = err.Error()
}

// ActionNames returns the extracted action keys, sorted.
func (x *Extraction) ActionNames() []string {
	names := make([]string, 0, len(x.Actions))
	for k := range x.Actions {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
