package loam

// StateMetadata represents the frontmatter of one state document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys (to, label).
type StateMetadata struct {
	// ID defaults to the document path without extension, "/" becoming ".".
	ID   string `json:"id" mapstructure:"id"`
	Type string `json:"type" mapstructure:"type"`

	// Value is the operation of an atomic state or the child list of a composite.
	// A single string and a list of strings are both accepted.
	Value any `json:"value" mapstructure:"value"`

	Parent    string   `json:"parent" mapstructure:"parent"`
	Children  []string `json:"children" mapstructure:"children"`
	Initial   []string `json:"initial" mapstructure:"initial"`
	Dependent *bool    `json:"dependent,omitempty" mapstructure:"dependent"`

	// Entry declares the state as an entry point of the workflow.
	Entry bool `json:"entry" mapstructure:"entry"`

	// To is sugar for a single unlabeled transition.
	To          string             `json:"to" mapstructure:"to"`
	Transitions []LoaderTransition `json:"transitions" mapstructure:"transitions"`
}

type LoaderTransition struct {
	To    string `json:"to" mapstructure:"to"`
	Label string `json:"label" mapstructure:"label"`
}
