package bridge

import (
	"encoding/json"

	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/codec"
	"github.com/wippyai/attachments/errors"
	"github.com/wippyai/attachments/stream"
	"go.uber.org/zap"
)

// Apply makes s the store seen through ops until restore is called. When ops
// already carries a replaceable store it is swapped in place and restored
// afterwards; otherwise ops is wrapped and restore does nothing.
func Apply(ops codec.Ops, s *attach.Store) (codec.Ops, func()) {
	if sw, ok := attach.FindSwappable(ops); ok {
		prev := sw.SetAttachmentStore(s)
		return ops, func() {
			sw.SetAttachmentStore(prev)
		}
	}
	return codec.UsingStore(ops, s), func() {}
}

// FromCodec runs a structural codec inside a stream. The node is carried as
// a length-prefixed JSON document. Each call wraps ops with the buffer's
// store, so attachments pushed by enclosing stream combinators are visible to
// the structural codec and ops itself is never modified. The returned codec
// may be shared between goroutines.
func FromCodec[R any](c codec.Codec[R], ops codec.Ops) stream.Codec[R] {
	return stream.Of(
		func(b *stream.Buffer) (R, error) {
			var zero R
			payload, err := stream.Bytes.Decode(b)
			if err != nil {
				return zero, err
			}
			var node codec.Node
			if err := json.Unmarshal(payload, &node); err != nil {
				return zero, errors.Wrap(errors.PhaseBridge, errors.KindInvalidData, err, "decode json node")
			}

			return codec.Parse(c, codec.UsingStore(ops, b.AttachmentStore()), node).Get()
		},
		func(b *stream.Buffer, v R) error {
			node, err := codec.EncodeStart(c, codec.UsingStore(ops, b.AttachmentStore()), v).Get()
			if err != nil {
				return err
			}

			payload, err := json.Marshal(node)
			if err != nil {
				return errors.Wrap(errors.PhaseBridge, errors.KindInvalidData, err, "encode json node")
			}
			if ce := Logger().Check(zap.DebugLevel, "bridged structural value"); ce != nil {
				ce.Write(zap.Int("bytes", len(payload)), zap.Stringer("store", b.AttachmentStore().ID()))
			}
			return stream.Bytes.Encode(b, payload)
		},
	)
}
