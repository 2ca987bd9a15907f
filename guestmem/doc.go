// Package guestmem exposes WebAssembly guest memory as a raw stream byte
// buffer.
//
// A Region has no attachment store of its own. Wrapping it with
// stream.NewBuffer gives it one, so stream codecs can transcode directly
// into a guest's linear memory:
//
//	g, err := guestmem.Instantiate(ctx, 1)
//	region, err := g.Region(0, 4096)
//	buf := stream.NewBuffer(region)
package guestmem
