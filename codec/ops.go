package codec

import (
	"sort"

	"github.com/wippyai/attachments/errors"
)

// Node is one value of a tree-shaped serialized form.
type Node = any

// Entry is one key/value pair merged into a map node.
type Entry struct {
	Value Node
	Key   string
}

// MapLike is read access to a map node.
type MapLike interface {
	Get(key string) (Node, bool)
	Keys() []string
}

// Ops builds and inspects nodes of one serialized form. An Ops value is the
// carrier threaded through every structural codec call.
type Ops interface {
	Empty() Node
	EmptyMap() Node
	CreateString(s string) Node
	CreateNumber(f float64) Node
	CreateBool(b bool) Node
	CreateList(items []Node) Node
	GetString(n Node) (string, error)
	GetNumber(n Node) (float64, error)
	GetBool(n Node) (bool, error)
	GetList(n Node) ([]Node, error)
	GetMap(n Node) (MapLike, error)
	MergeToMap(prefix Node, entries []Entry) (Node, error)
	// CompressMaps reports whether map codecs should write their value as a
	// single entry instead of spreading fields into the enclosing map.
	CompressMaps() bool
}

// Tree is the Ops for plain Go values: nil, string, float64, bool, []any and
// map[string]any. The shapes match what encoding/json produces.
type Tree struct{}

var _ Ops = Tree{}

func (Tree) Empty() Node                 { return nil }
func (Tree) EmptyMap() Node              { return map[string]any{} }
func (Tree) CreateString(s string) Node  { return s }
func (Tree) CreateNumber(f float64) Node { return f }
func (Tree) CreateBool(b bool) Node      { return b }
func (Tree) CompressMaps() bool          { return false }

func (Tree) CreateList(items []Node) Node {
	out := make([]any, len(items))
	copy(out, items)
	return out
}

func (Tree) GetString(n Node) (string, error) {
	s, ok := n.(string)
	if !ok {
		return "", errors.TypeMismatch(errors.PhaseDecode, nil, "string", n)
	}
	return s, nil
}

func (Tree) GetNumber(n Node) (float64, error) {
	switch v := n.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	default:
		return 0, errors.TypeMismatch(errors.PhaseDecode, nil, "number", n)
	}
}

func (Tree) GetBool(n Node) (bool, error) {
	b, ok := n.(bool)
	if !ok {
		return false, errors.TypeMismatch(errors.PhaseDecode, nil, "bool", n)
	}
	return b, nil
}

func (Tree) GetList(n Node) ([]Node, error) {
	l, ok := n.([]any)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDecode, nil, "list", n)
	}
	return l, nil
}

func (Tree) GetMap(n Node) (MapLike, error) {
	m, ok := n.(map[string]any)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDecode, nil, "map", n)
	}
	return treeMap(m), nil
}

// MergeToMap copies prefix and adds entries. A nil prefix starts a new map.
func (Tree) MergeToMap(prefix Node, entries []Entry) (Node, error) {
	var base map[string]any
	switch p := prefix.(type) {
	case nil:
	case map[string]any:
		base = p
	default:
		return nil, errors.TypeMismatch(errors.PhaseEncode, nil, "map prefix", prefix)
	}

	out := make(map[string]any, len(base)+len(entries))
	for k, v := range base {
		out[k] = v
	}
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

type treeMap map[string]any

func (m treeMap) Get(key string) (Node, bool) {
	v, ok := m[key]
	return v, ok
}

func (m treeMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Forwarding passes every call to the wrapped Ops. Embed it to build an Ops
// decorator; Delegate lets attachment lookup see through the decorator.
type Forwarding struct {
	Ops
}

func (f Forwarding) Delegate() any {
	return f.Ops
}

type compressed struct {
	Forwarding
}

func (compressed) CompressMaps() bool { return true }

// Compressed returns ops with map compression turned on.
func Compressed(ops Ops) Ops {
	return compressed{Forwarding{Ops: ops}}
}
