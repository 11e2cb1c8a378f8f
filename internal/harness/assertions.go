package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Blocks   []BlockOrder // Full schedule for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nSchedule:\n")
	for _, b := range e.Blocks {
		fmt.Fprintf(&buf, "  %s: %s\n", b.Block, strings.Join(b.Nodes, " "))
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertBefore:
		return assertBefore(result, a)
	case AssertNotAdjacent:
		return assertNotAdjacent(result, a)
	case AssertLast:
		return assertLast(result, a)
	case AssertCount:
		return assertCount(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (r *Result) mustLocate(typ, name string) (string, int, error) {
	block, idx, ok := r.locate(name)
	if !ok {
		return "", 0, &AssertionError{
			Type:     typ,
			Expected: fmt.Sprintf("node %s in the schedule", name),
			Actual:   "not scheduled",
			Blocks:   r.Blocks,
		}
	}
	return block, idx, nil
}

// assertBefore checks first is scheduled before then in the same block.
func assertBefore(r *Result, a Assertion) error {
	fb, fi, err := r.mustLocate(AssertBefore, a.First)
	if err != nil {
		return err
	}
	tb, ti, err := r.mustLocate(AssertBefore, a.Then)
	if err != nil {
		return err
	}
	if fb != tb {
		return &AssertionError{
			Type:     AssertBefore,
			Expected: fmt.Sprintf("%s and %s in the same block", a.First, a.Then),
			Actual:   fmt.Sprintf("%s in %s, %s in %s", a.First, fb, a.Then, tb),
			Blocks:   r.Blocks,
		}
	}
	if fi >= ti {
		return &AssertionError{
			Type:     AssertBefore,
			Expected: fmt.Sprintf("%s before %s", a.First, a.Then),
			Actual:   fmt.Sprintf("%s at %d, %s at %d", a.First, fi, a.Then, ti),
			Blocks:   r.Blocks,
		}
	}
	return nil
}

// assertNotAdjacent checks then does not directly follow first. Nodes in
// different blocks are never adjacent.
func assertNotAdjacent(r *Result, a Assertion) error {
	fb, fi, err := r.mustLocate(AssertNotAdjacent, a.First)
	if err != nil {
		return err
	}
	tb, ti, err := r.mustLocate(AssertNotAdjacent, a.Then)
	if err != nil {
		return err
	}
	if fb == tb && ti == fi+1 {
		return &AssertionError{
			Type:     AssertNotAdjacent,
			Expected: fmt.Sprintf("%s not directly after %s", a.Then, a.First),
			Actual:   fmt.Sprintf("%s at %d directly follows %s", a.Then, ti, a.First),
			Blocks:   r.Blocks,
		}
	}
	return nil
}

// assertLast checks node is the final node of its block.
func assertLast(r *Result, a Assertion) error {
	block, idx, err := r.mustLocate(AssertLast, a.Node)
	if err != nil {
		return err
	}
	b, _ := r.block(block)
	if idx != len(b.Nodes)-1 {
		return &AssertionError{
			Type:     AssertLast,
			Expected: fmt.Sprintf("%s last in %s", a.Node, block),
			Actual:   fmt.Sprintf("%s at %d of %d", a.Node, idx, len(b.Nodes)),
			Blocks:   r.Blocks,
		}
	}
	return nil
}

// assertCount checks the number of scheduled nodes in a block.
func assertCount(r *Result, a Assertion) error {
	b, ok := r.block(a.Block)
	if !ok {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("block %s in the schedule", a.Block),
			Actual:   "not scheduled",
			Blocks:   r.Blocks,
		}
	}
	if len(b.Nodes) != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d nodes in %s", a.Count, a.Block),
			Actual:   fmt.Sprintf("%d nodes", len(b.Nodes)),
			Blocks:   r.Blocks,
		}
	}
	return nil
}
