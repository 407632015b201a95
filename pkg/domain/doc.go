/*
Package domain contains the core domain models of the flowpaths extractor.

It defines the normalized workflow state graph handed over by loaders and the
path-element trees produced by the analysis engine. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - State: A node of the workflow (an atomic action or a composite construct).
  - Transition: A scope-local edge between two states.
  - Graph: The immutable arena of states, entries and transitions.
  - Element: One node of a path tree (Atomic, Sequence, Parallel, Switch, Loop, LoopStop, Unknown).
  - Extraction: The per-action inbound/outbound paths of one workflow.
*/
package domain
