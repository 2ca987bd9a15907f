package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wippyai/attachments/attach"
	"github.com/wippyai/attachments/errors"
	"github.com/wippyai/attachments/guestmem"
	"github.com/wippyai/attachments/stream"
)

// palette is a shared dictionary of words. Encoding a word reference adds the
// word to the palette, so the palette is only final once the words are
// written.
type palette struct {
	index map[string]int
	words []string
}

func newPalette(words []string) *palette {
	p := &palette{index: make(map[string]int, len(words))}
	for _, w := range words {
		p.ref(w)
	}
	return p
}

func (p *palette) ref(w string) int {
	if i, ok := p.index[w]; ok {
		return i
	}
	i := len(p.words)
	p.index[w] = i
	p.words = append(p.words, w)
	return i
}

func (p *palette) word(i uint64) (string, error) {
	if i >= uint64(len(p.words)) {
		return "", errors.OutOfBounds(errors.PhaseDecode, []string{"palette"}, int(i)+1, len(p.words))
	}
	return p.words[i], nil
}

var paletteKey = attach.NewKey[*palette]("palette")

var paletteCodec = stream.Of(
	func(b *stream.Buffer) (*palette, error) {
		words, err := stream.ListOf(stream.String).Decode(b)
		if err != nil {
			return nil, err
		}
		return newPalette(words), nil
	},
	func(b *stream.Buffer, p *palette) error {
		return stream.ListOf(stream.String).Encode(b, p.words)
	},
)

// wordRef writes a word as its index in the attached palette.
var wordRef = stream.Of(
	func(b *stream.Buffer) (string, error) {
		p, err := paletteKey.Require(b.AttachmentStore(), errors.PhaseDecode)
		if err != nil {
			return "", err
		}
		i, err := stream.Uvarint.Decode(b)
		if err != nil {
			return "", err
		}
		return p.word(i)
	},
	func(b *stream.Buffer, w string) error {
		p, err := paletteKey.Require(b.AttachmentStore(), errors.PhaseEncode)
		if err != nil {
			return err
		}
		return stream.Uvarint.Encode(b, uint64(p.ref(w)))
	},
)

// wordsCodec writes the palette gathered while encoding the words ahead of
// the word references.
var wordsCodec = stream.MutReadAttachingSingle(paletteKey, paletteCodec, nil,
	stream.ListOf(wordRef),
	func([]string) (*palette, error) { return newPalette(nil), nil },
)

// trace is the outcome of one round trip.
type trace struct {
	input   []string
	decoded []string
	wire    []byte
	events  []attach.Event
	carrier string
}

// guestPages sizes the guest memory used with -guest.
const guestPages = 1

// roundTrip encodes words, decodes them back and records every attachment
// push and pop on the way. With guest set the bytes live in a wazero guest's
// linear memory instead of a host buffer.
func roundTrip(ctx context.Context, words []string, guest bool) (*trace, error) {
	rec := &attach.Recorder{}
	store := attach.NewStore(attach.WithObserver(rec))

	var (
		raw      stream.ByteBuf
		snapshot func(n int) []byte
		carrier  string
	)
	if guest {
		g, err := guestmem.Instantiate(ctx, guestPages)
		if err != nil {
			return nil, err
		}
		defer g.Close(ctx)
		region, err := g.Region(0, guestPages*65536)
		if err != nil {
			return nil, err
		}
		raw = region
		snapshot = func(n int) []byte {
			p, _ := g.Memory().Read(0, uint32(n))
			return append([]byte(nil), p...)
		}
		carrier = "guest memory"
	} else {
		host := &bytes.Buffer{}
		raw = host
		snapshot = func(int) []byte { return append([]byte(nil), host.Bytes()...) }
		carrier = "host buffer"
	}

	b := stream.NewBuffer(raw, stream.WithStore(store))
	if err := wordsCodec.Encode(b, words); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	wire := snapshot(b.Len())

	decoded, err := wordsCodec.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if !rec.Balanced() {
		return nil, fmt.Errorf("unbalanced store: %d pushes, %d pops", rec.Pushes(), rec.Pops())
	}

	return &trace{
		input:   words,
		decoded: decoded,
		wire:    wire,
		events:  rec.Events(),
		carrier: carrier,
	}, nil
}
