// Package goid reports the id of the calling goroutine.
package goid

import "runtime"

// ID returns the current goroutine id, or 0 if it cannot be determined.
func ID() uint64 {
	// "goroutine 123 [running]:\n..." fits easily.
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parse(buf[:n])
}

func parse(buf []byte) uint64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var id uint64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
