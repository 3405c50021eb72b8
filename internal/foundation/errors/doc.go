// Package errors provides foundational, type-safe error primitives used across pkgdocs.
//
// This package contains classified error types and helpers for consistent error
// handling, including a fluent builder API for constructing ClassifiedError values
// with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, manifest, generation, output, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter mapping categories to process exit codes
//
// Every pipeline failure is fatal; there is no retry classification.
//
// Example usage:
//
//	err := errors.GenerationError("documentation generation failed").
//		WithCause(cause).
//		WithContext("target", target.Name).
//		Build()
package errors
