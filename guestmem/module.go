package guestmem

import (
	"encoding/binary"
)

const (
	// magic is "\0asm" in little-endian
	magic   uint32 = 0x6D736100
	version uint32 = 0x01

	sectionMemory byte = 5
	sectionExport byte = 7
	kindMemory    byte = 2
)

// memoryModule encodes a module whose only content is one linear memory of
// pages pages, exported under name.
func memoryModule(name string, pages uint32) []byte {
	out := binary.LittleEndian.AppendUint32(nil, magic)
	out = binary.LittleEndian.AppendUint32(out, version)

	// Memory section: one memory, no maximum
	var mem []byte
	mem = binary.AppendUvarint(mem, 1)
	mem = append(mem, 0x00)
	mem = binary.AppendUvarint(mem, uint64(pages))
	out = writeSection(out, sectionMemory, mem)

	// Export section: the memory under name
	var exp []byte
	exp = binary.AppendUvarint(exp, 1)
	exp = binary.AppendUvarint(exp, uint64(len(name)))
	exp = append(exp, name...)
	exp = append(exp, kindMemory)
	exp = binary.AppendUvarint(exp, 0)
	return writeSection(out, sectionExport, exp)
}

func writeSection(out []byte, id byte, content []byte) []byte {
	out = append(out, id)
	out = binary.AppendUvarint(out, uint64(len(content)))
	return append(out, content...)
}
