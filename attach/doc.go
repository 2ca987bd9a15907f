// Package attach provides typed attachment keys, the per-call attachment
// store and the carrier capabilities used to find a store on the object
// threaded through a transcode.
//
// A Key is an identity token. Two keys with the same name are different keys.
// Values pushed under a key shadow earlier values until popped:
//
//	palette := attach.NewKey[[]string]("palette")
//	s := attach.NewStore()
//	palette.Push(s, words)
//	defer palette.Pop(s)
//
// Carriers that natively own a store implement Carrier. Decorators that wrap
// another carrier implement Delegating so Find can look through them. Carriers
// whose store can be replaced for a bounded scope implement Swappable, which
// is what Sync uses to share a parent's store with a child buffer.
//
// A Store has no internal locking. One top-level transcode owns one store.
package attach
