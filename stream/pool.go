package stream

import (
	"bytes"
	"sync"
)

const (
	// Pool limits to prevent memory bloat
	stageMaxCap  = 64 << 10 // max pooled staging bytes
	stageInitCap = 256
)

type stageBuffer = bytes.Buffer

// staging buffer pool for child regions
var stagePool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, stageInitCap))
	},
}

func getStage(hint int) *stageBuffer {
	buf := stagePool.Get().(*stageBuffer)
	buf.Reset()
	if hint > 0 {
		buf.Grow(hint)
	}
	return buf
}

func putStage(buf *stageBuffer) {
	if buf == nil || buf.Cap() > stageMaxCap {
		return // reject oversized
	}
	buf.Reset()
	stagePool.Put(buf)
}
