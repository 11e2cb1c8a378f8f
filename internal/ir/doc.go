// Package ir provides the backend intermediate representation consumed by
// the schedulers.
//
// A Routine is a set of basic Blocks. Each Block owns unordered Nodes, the
// already-selected machine instructions of a load/store RISC target, and
// lists its incoming control-flow edges as CfgPreds: control-producing nodes
// (a projection of a conditional branch, an unconditional jump) living in the
// predecessor block. Outgoing edges are derived by Routine.AssureOuts.
//
// This package contains the data model, opcode classification and graph
// walks only. All other internal packages import ir; ir imports nothing
// internal.
//
// Key constraints:
//   - Node IDs are unique within a routine and stable for its lifetime
//   - Projections are never scheduled; they extract one result of a
//     multi-result node and become available together with it
//   - Nodes are immutable for scheduling purposes
package ir
