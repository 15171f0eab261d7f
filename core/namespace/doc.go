// Package namespace holds the dotted-path registry tree. A Namespace owns
// exactly three partitions (api, models and plugins); each partition is a
// Node mapping string keys to either sub-nodes or registered leaf values.
//
// Writes auto-create missing intermediate nodes, reads never do:
//
//	ns := namespace.New()
//	_ = ns.Insert(namespace.API, "fns.add_one", func(x int) int { return x + 1 })
//	fn, err := namespace.LookupAs[func(int) int](ns.Partition(namespace.API), "fns.add_one")
//
// Registration is expected to happen during startup. All nodes of a
// namespace share one lock, so late registration concurrent with lookups is
// still safe.
package namespace
