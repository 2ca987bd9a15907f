package stream

import (
	"encoding/binary"
	"io"

	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
)

// ByteBuf is a raw byte carrier with a read cursor and a write end.
// *bytes.Buffer satisfies it.
type ByteBuf interface {
	io.Reader
	io.Writer
	io.ByteReader
	io.ByteWriter
	// Len returns the number of unread bytes.
	Len() int
}

// Buffer is a ByteBuf that carries an attachment store and a transport.
// The zero Buffer carries attachments and DefaultTransport but has no bytes;
// use NewBuffer for I/O.
type Buffer struct {
	raw       ByteBuf
	store     *attach.Store
	transport *Transport
	stage     *stageBuffer
}

// BufferOption configures a Buffer.
type BufferOption func(*Buffer)

// WithTransport sets the buffer's transport.
func WithTransport(t *Transport) BufferOption {
	return func(b *Buffer) {
		b.transport = t
	}
}

// WithStore sets the buffer's store.
func WithStore(s *attach.Store) BufferOption {
	return func(b *Buffer) {
		b.store = s
	}
}

// NewBuffer wraps raw. When raw already carries a store, directly or through
// delegates, the new buffer shares it; a raw *Buffer also lends its transport.
func NewBuffer(raw ByteBuf, opts ...BufferOption) *Buffer {
	b := &Buffer{raw: raw}
	if src, ok := raw.(*Buffer); ok {
		b.transport = src.transport
	}
	b.store = attach.Find(raw)
	for _, opt := range opts {
		opt(b)
	}
	if b.store == nil {
		b.store = attach.NewStore()
	}
	if b.transport == nil {
		b.transport = DefaultTransport()
	}
	return b
}

// Wrap returns raw itself when it is a *Buffer and a new Buffer otherwise.
func Wrap(raw ByteBuf) *Buffer {
	if b, ok := raw.(*Buffer); ok {
		return b
	}
	return NewBuffer(raw)
}

// HasStore reports true for any non-nil buffer; a buffer without a store
// gets one on first use.
func (b *Buffer) HasStore() bool {
	return b != nil
}

func (b *Buffer) AttachmentStore() *attach.Store {
	if b.store == nil {
		b.store = attach.NewStore()
	}
	return b.store
}

func (b *Buffer) SetAttachmentStore(s *attach.Store) *attach.Store {
	prev := b.store
	b.store = s
	return prev
}

// Delegate exposes the raw carrier.
func (b *Buffer) Delegate() any {
	return b.raw
}

// Transport returns the buffer's transport, DefaultTransport when none was
// set.
func (b *Buffer) Transport() *Transport {
	if b.transport == nil {
		b.transport = DefaultTransport()
	}
	return b.transport
}

func (b *Buffer) limits() Limits {
	return b.Transport().Limits
}

func (b *Buffer) Raw() ByteBuf {
	return b.raw
}

func (b *Buffer) Len() int {
	return b.raw.Len()
}

func (b *Buffer) Read(p []byte) (int, error) {
	return b.raw.Read(p)
}

func (b *Buffer) Write(p []byte) (int, error) {
	return b.raw.Write(p)
}

func (b *Buffer) ReadByte() (byte, error) {
	return b.raw.ReadByte()
}

func (b *Buffer) WriteByte(c byte) error {
	return b.raw.WriteByte(c)
}

// ReadN reads exactly n bytes.
func (b *Buffer) ReadN(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "negative length")
	}
	if avail := b.raw.Len(); n > avail {
		return nil, errors.OutOfBounds(errors.PhaseDecode, nil, n, avail)
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(b.raw, out); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "read bytes")
	}
	return out, nil
}

// WriteAll writes p or fails.
func (b *Buffer) WriteAll(p []byte) error {
	n, err := b.raw.Write(p)
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindOutOfBounds, err, "write bytes")
	}
	if n != len(p) {
		return errors.OutOfBounds(errors.PhaseEncode, nil, len(p), n)
	}
	return nil
}

// ReadUvarint reads an unsigned LEB128 value.
func (b *Buffer) ReadUvarint() (uint64, error) {
	v, err := binary.ReadUvarint(b.raw)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "read varint")
	}
	return v, nil
}

// WriteUvarint writes an unsigned LEB128 value.
func (b *Buffer) WriteUvarint(v uint64) error {
	var scratch [binary.MaxVarintLen64]byte
	return b.WriteAll(binary.AppendUvarint(scratch[:0], v))
}

// ReadLength reads a uvarint length and checks it against limit and the
// unread bytes.
func (b *Buffer) ReadLength(what string, limit int) (int, error) {
	v, err := b.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if limit > 0 && v > uint64(limit) {
		return 0, errors.LimitExceeded(errors.PhaseDecode, what, int(min(v, uint64(maxInt))), limit)
	}
	if avail := b.raw.Len(); v > uint64(avail) {
		return 0, errors.OutOfBounds(errors.PhaseDecode, nil, int(min(v, uint64(maxInt))), avail)
	}
	return int(v), nil
}

const maxInt = int(^uint(0) >> 1)

// Release returns a pooled staging buffer. The Buffer must not be used
// afterwards.
func (b *Buffer) Release() {
	if b.stage != nil {
		putStage(b.stage)
		b.stage = nil
		b.raw = nil
	}
}

// Push pushes v under key on b's store.
func Push[A any](b *Buffer, key *attach.Key[A], v A) {
	key.Push(b.AttachmentStore(), v)
}

// Pop removes the current value for key from b's store.
func Pop[A any](b *Buffer, key *attach.Key[A]) (A, bool) {
	return key.Pop(b.AttachmentStore())
}

// Get returns the current value for key on b's store.
func Get[A any](b *Buffer, key *attach.Key[A]) (A, bool) {
	return key.Get(b.AttachmentStore())
}
