// Package errors provides structured error types for the attachments library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the attachment key involved, the keys that were present
// at the time, a field path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Path("palette", "entries").
//		Detail("negative length %d", n).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingAttachment(errors.PhaseDecode, "palette", present)
//	err := errors.KeyDerivation(cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
