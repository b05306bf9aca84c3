// Package errors provides the classified error type used across docgen.
//
// Document failures (unresolved references, circular includes, unsupported
// examples, unreadable sources) are reported against the document that caused
// them and never abort other documents. Configuration and filesystem errors
// are surfaced by the CLI with a category-specific exit code.
//
//	err := errors.UnresolvedReference("pkg.Foo#bar(int)").
//		WithContext("document", "pkg").
//		Build()
package errors
