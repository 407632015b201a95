/*
Package dsl provides a Go DSL for programmatically constructing workflow state graphs.

It allows developers to define workflows using a type-safe, fluent builder pattern
instead of relying on external YAML or HCL files. This is particularly useful for
dynamic graph generation and unit testing.

Example usage:

	package main

	import (
		"github.com/aretw0/flowpaths/pkg/dsl"
	)

	func main() {
		b := dsl.New("checkout")

		b.Add("E").Sequence().Entry()
		b.Add("E.F1").Knative("charge").Go("E.S")
		b.Add("E.S").Switch()
		b.Add("E.S.F2").Database("orders")
		b.Add("E.S.F3").EventSource("refunds")

		// The resulting graph can be handed to flowpaths.New through a loader
		loader, err := b.Build()
		// ...
	}
*/
package dsl
