// Package bridge shares one attachment store between the streaming and the
// structural carrier.
//
// FromCodec is the direct path: a stream codec that embeds a structural codec
// hands the buffer's store to the structural Ops itself.
//
// Handoff covers code that sits between the two and cannot be changed to pass
// the store along. Grabbing publishes the buffer's store in a per-goroutine
// slot and Applying picks it up on the structural side. Nesting a Grabbing
// inside another on the same goroutine is reported as an error rather than
// overwriting the outer store.
package bridge
