// Package compiler turns routine descriptions into ir.Routine values.
//
// Descriptions are written in YAML, JSON or CUE and share one schema
// (RoutineDesc). CUE sources are compiled with the CUE Go API and their
// errors keep source positions:
//
//	r, err := compiler.LoadFile("testdata/delay_slot.cue")
//
// Validate and AnalyzeCycles report structure the scheduler would reject or
// that is likely a mistake, collecting every problem instead of stopping at
// the first.
package compiler
