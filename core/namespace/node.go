package namespace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Node is a mapping from keys to sub-nodes or leaf values. Key order follows
// first insertion; overwriting a key keeps its position.
type Node struct {
	mu      *sync.RWMutex
	path    string
	keys    []string
	entries map[string]any
}

func newNode(mu *sync.RWMutex, path string) *Node {
	return &Node{mu: mu, path: path, entries: make(map[string]any)}
}

// Path returns the dotted path of the node, starting with its partition.
func (n *Node) Path() string { return n.path }

func (n *Node) join(key string) string {
	if n.path == "" {
		return key
	}
	return n.path + "." + key
}

func (n *Node) set(key string, v any) {
	if _, ok := n.entries[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.entries[key] = v
}

// Get returns the value stored directly under key.
func (n *Node) Get(key string) (any, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, n.join(key))
	}
	return v, nil
}

// Sub returns the sub-namespace stored under key.
func (n *Node) Sub(key string) (*Node, error) {
	v, err := n.Get(key)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Node)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotNamespace, n.join(key))
	}
	return sub, nil
}

// Lookup resolves a dotted path relative to n.
func (n *Node) Lookup(dotted string) (any, error) {
	keys, err := splitName(dotted)
	if err != nil {
		return nil, err
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.lookup(keys)
}

func (n *Node) lookup(keys []string) (any, error) {
	cur := n
	for i, k := range keys {
		v, ok := cur.entries[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, cur.join(k))
		}
		if i == len(keys)-1 {
			return v, nil
		}
		sub, ok := v.(*Node)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, cur.join(strings.Join(keys[i:i+2], ".")))
		}
		cur = sub
	}
	return cur, nil
}

// Keys returns the keys of n in insertion order.
func (n *Node) Keys() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.keys...)
}

// Len returns the number of direct entries.
func (n *Node) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.keys)
}

// Count returns the number of leaves below n.
func (n *Node) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.count()
}

func (n *Node) count() int {
	c := 0
	for _, v := range n.entries {
		if sub, ok := v.(*Node); ok {
			c += sub.count()
			continue
		}
		c++
	}
	return c
}

// Entry is a snapshot of one entry reached by Walk.
type Entry struct {
	Path  string
	Value any
	Depth int
}

// IsNamespace reports whether the entry is a sub-namespace.
func (e Entry) IsNamespace() bool {
	_, ok := e.Value.(*Node)
	return ok
}

// Walk calls fn for every entry below n, depth first and in insertion order.
// The tree is snapshotted first so fn may query the namespace. A non-nil
// error from fn stops the walk and is returned.
func (n *Node) Walk(fn func(Entry) error) error {
	n.mu.RLock()
	entries := n.snapshot(nil, 0)
	n.mu.RUnlock()
	for _, e := range entries {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) snapshot(out []Entry, depth int) []Entry {
	for _, k := range n.keys {
		v := n.entries[k]
		out = append(out, Entry{Path: n.join(k), Value: v, Depth: depth})
		if sub, ok := v.(*Node); ok {
			out = sub.snapshot(out, depth+1)
		}
	}
	return out
}

// Describe renders a leaf value as its Go type.
func Describe(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}

// MarshalJSON encodes the tree as nested objects in insertion order. Leaves
// are rendered with Describe.
func (n *Node) MarshalJSON() ([]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, k := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if sub, ok := n.entries[k].(*Node); ok {
			if err := sub.writeJSON(buf); err != nil {
				return err
			}
			continue
		}
		leaf, err := json.Marshal(Describe(n.entries[k]))
		if err != nil {
			return err
		}
		buf.Write(leaf)
	}
	buf.WriteByte('}')
	return nil
}

// MarshalYAML encodes the tree as an ordered YAML mapping.
func (n *Node) MarshalYAML() (interface{}, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.yamlNode(), nil
}

func (n *Node) yamlNode() *yaml.Node {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range n.keys {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		if sub, ok := n.entries[k].(*Node); ok {
			out.Content = append(out.Content, key, sub.yamlNode())
			continue
		}
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: Describe(n.entries[k])}
		out.Content = append(out.Content, key, val)
	}
	return out
}

// LookupAs resolves dotted below n and asserts the result to T.
func LookupAs[T any](n *Node, dotted string) (T, error) {
	var zero T
	v, err := n.Lookup(dotted)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s.%s is %s", ErrWrongType, n.Path(), dotted, Describe(v))
	}
	return t, nil
}
