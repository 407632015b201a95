/*
Package ports defines the driven ports (interfaces) for the flowpaths extractor.

These interfaces decouple the analysis core from external implementations, allowing
the extractor to read graphs from various sources and to persist or broadcast its results.

# Key Interfaces

  - GraphLoader: Responsible for producing a normalized domain.Graph (e.g., from Loam, YAML or Memory).
  - Analyzer: The query surface of the analysis engine, consumed by the HTTP and MCP adapters.
  - ResultStore: Responsible for persisting and loading extraction results.
  - ResultPublisher: Broadcasts finished extractions to downstream consumers.
  - DistributedLocker: Serializes concurrent extractions of the same workflow across replicas.
*/
package ports
