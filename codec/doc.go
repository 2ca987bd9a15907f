// Package codec implements attachment-aware structural codecs.
//
// A structural codec converts a Go value to and from a tree of nodes built by
// an Ops implementation. The Ops value is the carrier: combinators push
// attachments onto it and nested codecs read them back.
//
//	registry := attach.NewKey[Registry]("registry")
//
//	entry := codec.Dispatch(registry, func(r Registry) (codec.Codec[Entry], error) {
//		return r.EntryCodec(), nil
//	})
//	root := codec.Attaching(codec.ListOf(entry), attach.Bind(registry, reg))
//
// Ops implementations that do not carry a store are wrapped on the first
// push; decorators built on Forwarding stay transparent to the lookup.
//
// Failures are values: every decode and encode returns a Result that may
// carry both an error and a partial value.
package codec
