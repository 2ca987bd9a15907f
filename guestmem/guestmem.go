package guestmem

import (
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/attachments/errors"
	"github.com/wippyai/attachments/stream"
)

// MemoryExport is the export name of the memory created by Instantiate.
const MemoryExport = "memory"

// Region is a window of guest linear memory used as a raw byte buffer.
// Writes append at the write offset and reads consume from the read offset,
// both relative to the window start. A Region carries no attachment store;
// wrap it with stream.NewBuffer.
type Region struct {
	mem  api.Memory
	base uint32
	size uint32
	r    uint32
	w    uint32
}

var _ stream.ByteBuf = (*Region)(nil)

// NewRegion returns the window [offset, offset+size) of mem.
func NewRegion(mem api.Memory, offset, size uint32) (*Region, error) {
	if mem == nil {
		return nil, errors.InvalidData(errors.PhaseAttach, nil, "nil guest memory")
	}
	end := uint64(offset) + uint64(size)
	if end > uint64(mem.Size()) {
		return nil, errors.New(errors.PhaseAttach, errors.KindOutOfBounds).
			Detail("region offset=%d size=%d exceeds memory size %d", offset, size, mem.Size()).
			Build()
	}
	return &Region{mem: mem, base: offset, size: size}, nil
}

// Len returns the number of written bytes not yet read.
func (g *Region) Len() int {
	return int(g.w - g.r)
}

// Cap returns the window size.
func (g *Region) Cap() int {
	return int(g.size)
}

func (g *Region) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	avail := g.w - g.r
	if avail == 0 {
		return 0, io.EOF
	}
	n := uint32(len(p))
	if n > avail {
		n = avail
	}
	data, ok := g.mem.Read(g.base+g.r, n)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d, length=%d", g.base+g.r, n)
	}
	copy(p, data)
	g.r += n
	return int(n), nil
}

func (g *Region) Write(p []byte) (int, error) {
	if uint64(g.w)+uint64(len(p)) > uint64(g.size) {
		return 0, errors.OutOfBounds(errors.PhaseEncode, nil, len(p), int(g.size-g.w))
	}
	if !g.mem.Write(g.base+g.w, p) {
		return 0, fmt.Errorf("write out of bounds: offset=%d, length=%d", g.base+g.w, len(p))
	}
	g.w += uint32(len(p))
	return len(p), nil
}

func (g *Region) ReadByte() (byte, error) {
	if g.r >= g.w {
		return 0, io.EOF
	}
	c, ok := g.mem.ReadByte(g.base + g.r)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", g.base+g.r)
	}
	g.r++
	return c, nil
}

func (g *Region) WriteByte(c byte) error {
	if g.w >= g.size {
		return errors.OutOfBounds(errors.PhaseEncode, nil, 1, 0)
	}
	if !g.mem.WriteByte(g.base+g.w, c) {
		return fmt.Errorf("write out of bounds: offset=%d", g.base+g.w)
	}
	g.w++
	return nil
}

// Reset discards the window contents.
func (g *Region) Reset() {
	g.r = 0
	g.w = 0
}

// Guest is a running module that owns a linear memory and nothing else.
type Guest struct {
	runtime wazero.Runtime
	module  api.Module
	memory  api.Memory
}

// Instantiate starts a memory-only guest with the given number of 64 KiB
// pages.
func Instantiate(ctx context.Context, pages uint32) (*Guest, error) {
	r := wazero.NewRuntime(ctx)
	mod, err := r.Instantiate(ctx, memoryModule(MemoryExport, pages))
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Wrap(errors.PhaseAttach, errors.KindInvalidData, err, "instantiate guest")
	}
	mem := mod.ExportedMemory(MemoryExport)
	if mem == nil {
		_ = r.Close(ctx)
		return nil, errors.InvalidData(errors.PhaseAttach, nil, "guest exports no memory")
	}
	Logger().Debug("guest instantiated")
	return &Guest{runtime: r, module: mod, memory: mem}, nil
}

// Memory returns the guest's linear memory.
func (g *Guest) Memory() api.Memory {
	return g.memory
}

// Region returns a window of the guest's memory.
func (g *Guest) Region(offset, size uint32) (*Region, error) {
	return NewRegion(g.memory, offset, size)
}

// Close shuts down the guest and its runtime.
func (g *Guest) Close(ctx context.Context) error {
	if g.runtime == nil {
		return nil
	}
	err := g.runtime.Close(ctx)
	g.runtime = nil
	g.module = nil
	g.memory = nil
	return err
}
