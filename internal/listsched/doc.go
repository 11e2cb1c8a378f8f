// Package listsched implements the generic list-scheduling engine that
// architecture-specific schedulers drive, and the registry those schedulers
// are published in.
//
// The Engine maintains the per-block dependency graph and the ready set; it
// never chooses. A Scheduler walks the routine's blocks, asks the engine for
// the ready set, picks one node at a time and commits it back. The result is
// a Schedule: one linear order per block.
//
// Schedulers register themselves by name (see Register). This package
// registers "trivial", which always takes the first ready node.
package listsched
