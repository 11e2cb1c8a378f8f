// Package sparc implements a hazard-aware list scheduler for SPARC.
//
// Three pipeline hazards are avoided when the ready set allows it:
//
//	load delay      a use of a load result in the very next slot
//	mul/div delay   a use of a multiply/divide result in the very next slot
//	branch compare  the branch's compare issued last, into the delay slot
//
// The scheduler never inserts nops and never reorders across blocks. When
// every ready node carries a hazard the first ready node is taken anyway.
//
// Importing this package registers the scheduler with listsched as "sparc".
package sparc
