// Package witcodec provides canonical stream codecs for WIT primitive types
// and lists of them, selected at transcode time by a wit.Type attachment.
//
// A schema-driven format attaches the field's declared type under TypeKey and
// lets Value pick the wire layout:
//
//	c := witcodec.Typed(wit.U32{})
//	err := c.Encode(buf, uint32(7))
package witcodec
