// Package attachments propagates typed context values through nested
// transcoders without threading them through every signature.
//
// A transcoder pushes a value under a key before it runs its inner
// transcoder and pops it afterwards. Anything the inner transcoder calls can
// read the value back from the carrier it was handed. Both tree-shaped
// (structural) and byte-stream (streaming) formats are supported.
//
// # Architecture Overview
//
//	attachments/        Root package (documentation only)
//	├── attach/         Keys, the per-carrier stack store, carrier wrapping and sync
//	├── codec/          Structural transcoders over tree ops and their combinators
//	├── stream/         Streaming transcoders over byte buffers and their combinators
//	├── bridge/         Store handoff between streaming and structural transcoders
//	├── witcodec/       WIT primitive codecs selected by a type attachment
//	├── guestmem/       WebAssembly guest linear memory as a stream byte buffer
//	├── errors/         Structured error types for debugging
//	└── cmd/attachtrace Diagnostic CLI rendering the push/pop trace of a round trip
//
// # Quick Start
//
// Attach a value around a structural transcoder and read it inside:
//
//	unitKey := attach.NewKey[string]("unit")
//
//	reading := codec.Record2(
//	    codec.For(codec.FieldOf("value", codec.Float64), func(r Reading) float64 { return r.Value }),
//	    codec.Virtual[Reading](codec.RetrieveValue(unitKey)),
//	    func(v float64, unit string) Reading { return Reading{v, unit} },
//	)
//
//	c := codec.Attaching(codec.AsCodec(reading), attach.Bind(unitKey, "celsius"))
//	r, err := codec.Parse(c, codec.Tree{}, node).Get()
//
// The same shape works on byte streams:
//
//	buf := stream.NewBuffer(&bytes.Buffer{})
//	err := stream.Attaching(inner, attach.Bind(unitKey, "celsius")).Encode(buf, v)
//
// # Stores and Carriers
//
// A carrier is anything that exposes an attachment store, directly or through
// a chain of delegates. Carriers that do not have one are wrapped: codec
// wraps tree ops, stream.NewBuffer wraps raw byte buffers. Pushes made on a
// wrapped carrier are visible only through the wrapper.
//
// Stores are single-goroutine state. A store belongs to the transcode call
// that created its carrier.
//
// # Error Handling
//
// Errors carry a phase, a kind and the names of the attachments that were
// present when the failure happened:
//
//	var e *errors.Error
//	if errors.As(err, &e) && e.Kind == errors.KindMissingAttachment {
//	    log.Printf("missing %s, have %v", e.Key, e.Present)
//	}
//
// # Logging
//
// Packages log through zap and are silent by default. Install a logger with
// each package's SetLogger.
package attachments
