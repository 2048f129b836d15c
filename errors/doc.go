// Package errors provides structured error types for nichefmt.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the field path that was being resolved, the inspected
// type name, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindFieldMissing).
//		Path("$variants$", "$variant$24", "$discr$").
//		TypeName("smol_str::SmolStr").
//		Detail("discriminant not present").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.FieldMissing(path, "buf")
//	err := errors.ReadFailed(path, addr, 5, cause)
//
// Decoders never surface these errors to the host. OutcomeOf collapses any
// error into one of four outcomes (ok, field_missing, read_failed,
// decode_failed) so callers can test which failure mode was absorbed.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
