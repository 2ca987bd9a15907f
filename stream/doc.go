// Package stream implements attachment-aware streaming codecs.
//
// A Buffer wraps a raw ByteBuf and always carries an attachment store and a
// Transport. Codecs read and write sequentially and return an error on the
// first failure.
//
// Length-delimited sub-regions are transcoded in child buffers created by a
// ChildFactory. A child shares its parent's Transport but has its own cursor
// and store; combinators share the parent's store with the child only for the
// duration of the inner call.
//
// MutReadAttaching covers the case where the inner encoder changes the value
// that the key is derived from: the inner region is staged in a child buffer
// and the key is written once the final value is known.
package stream
