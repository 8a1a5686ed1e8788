// Package acquisition persists metadata from interactive laboratory sessions:
// configuration file snapshots, the code cell that produced a run, and
// arbitrary named results. Everything lands in a keyed storage container,
// optionally mirrored to plain files next to it.
//
// The package also carries the config diff-evaluator, which annotates config
// lines whose written literal has drifted from the live runtime value.
package acquisition
