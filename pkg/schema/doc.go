// Package schema provides a small type system for validating loosely decoded data.
//
// It backs the structural validation of workflow documents before they are
// normalized into a graph: the YAML/JSON is first decoded into maps, checked
// against DocumentSchema and StateSchema, and only then mapped onto typed structs.
//
// Basic usage:
//
//	s := schema.Schema{
//	    "id":         schema.Required(schema.String()),
//	    "transition": schema.Optional(schema.OneOf(schema.String(), schema.Slice(schema.String()))),
//	}
//
//	if err := schema.Validate(s, data, ""); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // Handle each failure
//	    }
//	}
//
// Failures are collected rather than returned one by one, so a document
// with several mistakes reports all of them in a single pass.
package schema
