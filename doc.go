/*
Package flowpaths extracts control-flow paths from declarative workflow specifications.

A workflow (a serverless-orchestration document whose states are function calls,
database operations, event emissions, or sequence/parallel/switch/loop constructs)
is loaded into a normalized state graph. The engine then answers, for every
externally observable action, which paths can precede it (inbound) and which
paths can follow it (outbound) across every possible execution. It never runs the
workflow and never evaluates branch conditions: every switch branch is reachable
and loops are modeled structurally.

# Loading

New picks a loader from the path: YAML or JSON workflow documents, HCL files,
PlantUML-style state diagrams, or a directory holding one document per state.
Any ports.GraphLoader can be injected with WithLoader.

# Usage

	x, err := flowpaths.New(ctx, "./checkout.yaml",
		flowpaths.WithLoopDependence(true),
		flowpaths.WithMaxAlternatives(10_000),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Every path through the workflow.
	paths, err := x.FullPaths(ctx)

	// Every path ending at one action.
	toCharge, err := x.PathsTo(ctx, "charge")

	// Inbound and outbound paths of every action.
	ext, err := x.Extract(ctx)

Paths are trees of domain.Element values (Atomic, Sequence, Parallel, Switch,
Loop, plus the LoopStop and Unknown markers) and serialize to JSON or YAML with a
"type" discriminator.

# Persistence

Export runs Extract and hands the result to the configured ResultStore
(memory, file, Redis, Postgres) and ResultPublisher (AMQP). A DistributedLocker
keeps replicas from exporting the same workflow at once.
*/
package flowpaths
