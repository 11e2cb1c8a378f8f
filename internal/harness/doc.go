// Package harness runs ordering scenarios against registered schedulers.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: delay_slot
//	description: "The compare never lands in the branch delay slot"
//	routine: routines/delay_slot.yaml   # relative to the scenario file
//	scheduler: sparc                    # default sparc
//	policy: filter                      # default filter
//	reset_per_block: false
//	assertions:
//	  - type: not_adjacent
//	    first: l
//	    then: s
//	  - type: before
//	    first: a
//	    then: c
//	  - type: last
//	    node: br
//	  - type: count
//	    block: body
//	    count: 5
//
// # Assertion Types
//
//   - before: first is scheduled earlier than then, in the same block
//   - not_adjacent: then is never the node directly after first
//   - last: node is the final node of its block
//   - count: block has exactly count scheduled nodes
//
// # Deterministic Testing
//
// Every run uses a fixed session ID, the logical clock of trace.Memory,
// and a fresh in-memory store, so the snapshot compared by RunWithGolden is
// identical across runs.
package harness
