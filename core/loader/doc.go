// Package loader runs the startup modules named in configuration. A module
// is a named registration entry point; packages make theirs available by
// calling Provide from an init function, so linking a package into the
// binary is what makes its module path loadable:
//
//	func init() {
//	    loader.Provide("builtin.fns", func(ctx context.Context, reg *registrar.Registrar, conf map[string]any) error {
//	        registrar.Register[func(int) int](reg, namespace.API, "fns.add_one")(addOne)
//	        return nil
//	    })
//	}
//
// Loader.Load then runs the configured paths in order. Each path runs at
// most once per Loader; the first failure stops the sequence and is
// returned as an *ImportError wrapping the cause.
package loader
