package stream

// Limits bounds lengths read from untrusted input. Zero means unlimited.
// Encoding enforces the same limits so that every encoded value decodes on
// the same transport.
type Limits struct {
	MaxChildLength  int
	MaxStringLength int
	MaxListLength   int
}

// DefaultLimits are the limits of DefaultTransport.
var DefaultLimits = Limits{
	MaxChildLength:  16 << 20,
	MaxStringLength: 1 << 20,
	MaxListLength:   1 << 20,
}

// Transport is per-connection metadata shared by a buffer and every child
// buffer created from it.
type Transport struct {
	values  map[string]any
	Limits  Limits
	Version uint32
}

// DefaultTransport returns a transport with version 1 and DefaultLimits.
func DefaultTransport() *Transport {
	return &Transport{Version: 1, Limits: DefaultLimits}
}

// Value returns a named transport value.
func (t *Transport) Value(name string) (any, bool) {
	v, ok := t.values[name]
	return v, ok
}

// WithValue returns a copy of t with name set to v.
func (t *Transport) WithValue(name string, v any) *Transport {
	out := &Transport{Version: t.Version, Limits: t.Limits, values: make(map[string]any, len(t.values)+1)}
	for k, existing := range t.values {
		out.values[k] = existing
	}
	out.values[name] = v
	return out
}
