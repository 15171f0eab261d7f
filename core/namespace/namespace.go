package namespace

import (
	"fmt"
	"strings"
	"sync"
)

// Option configures a Namespace.
type Option func(*Namespace)

// WithStrict rejects a registration whose exact path is already taken
// instead of overwriting it.
func WithStrict() Option {
	return func(ns *Namespace) { ns.strict = true }
}

// Namespace is the root of the registry. Its partitions are created by New
// and are never replaced; entries are only ever added or overwritten.
type Namespace struct {
	mu     sync.RWMutex
	strict bool
	parts  map[Partition]*Node
}

// New returns a namespace with empty api, models and plugins partitions.
func New(opts ...Option) *Namespace {
	ns := &Namespace{parts: make(map[Partition]*Node, 3)}
	for _, p := range Partitions() {
		ns.parts[p] = newNode(&ns.mu, string(p))
	}
	for _, o := range opts {
		o(ns)
	}
	return ns
}

// Strict reports whether duplicate registrations are rejected.
func (ns *Namespace) Strict() bool {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return ns.strict
}

// SetStrict switches strict mode on or off for later registrations.
func (ns *Namespace) SetStrict(strict bool) {
	ns.mu.Lock()
	ns.strict = strict
	ns.mu.Unlock()
}

// Partition returns the root node of p, or nil for an unknown partition.
func (ns *Namespace) Partition(p Partition) *Node { return ns.parts[p] }

func (ns *Namespace) partition(p Partition) (*Node, error) {
	n, ok := ns.parts[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPartition, string(p))
	}
	return n, nil
}

// Insert stores value at the dotted name below partition p, creating
// missing intermediate nodes. An existing value at that exact path is
// replaced unless the namespace is strict.
func (ns *Namespace) Insert(p Partition, name string, value any) error {
	_, err := ns.Put(p, name, value)
	return err
}

// Put behaves like Insert and also reports whether a previous value was
// replaced.
func (ns *Namespace) Put(p Partition, name string, value any) (bool, error) {
	root, err := ns.partition(p)
	if err != nil {
		return false, err
	}
	keys, err := splitName(name)
	if err != nil {
		return false, err
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()
	node := root
	for _, k := range keys[:len(keys)-1] {
		v, ok := node.entries[k]
		if !ok {
			child := newNode(&ns.mu, node.join(k))
			node.set(k, child)
			node = child
			continue
		}
		sub, ok := v.(*Node)
		if !ok {
			return false, fmt.Errorf("%w: %s holds %s", ErrNotNamespace, node.join(k), Describe(v))
		}
		node = sub
	}
	last := keys[len(keys)-1]
	_, exists := node.entries[last]
	if exists && ns.strict {
		return false, fmt.Errorf("%w: %s", ErrConflict, node.join(last))
	}
	node.set(last, value)
	return exists, nil
}

// Lookup resolves name below partition p. Missing segments yield ErrNotFound.
func (ns *Namespace) Lookup(p Partition, name string) (any, error) {
	root, err := ns.partition(p)
	if err != nil {
		return nil, err
	}
	return root.Lookup(name)
}

// Get resolves a full path whose first segment is the partition, such as
// "api.fns.my_fn". A bare partition name returns its root node.
func (ns *Namespace) Get(path string) (any, error) {
	head, rest, found := strings.Cut(path, ".")
	p, err := ParsePartition(head)
	if err != nil {
		return nil, err
	}
	if !found {
		return ns.parts[p], nil
	}
	return ns.parts[p].Lookup(rest)
}

// Count returns the number of leaves across all partitions.
func (ns *Namespace) Count() int {
	c := 0
	for _, p := range Partitions() {
		c += ns.parts[p].Count()
	}
	return c
}

func splitName(name string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	keys := strings.Split(name, ".")
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidName, name)
		}
	}
	return keys, nil
}
