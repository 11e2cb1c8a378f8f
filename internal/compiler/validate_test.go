package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func compile(t *testing.T, yaml string) []ValidationError {
	t.Helper()
	r, err := Parse([]byte(yaml), FormatYAML, "t.yaml")
	require.NoError(t, err)
	return Validate(r)
}

func TestValidate_Clean(t *testing.T) {
	r, err := LoadFile("testdata/delay_slot.yaml")
	require.NoError(t, err)
	assert.Empty(t, Validate(r))
	assert.Empty(t, AnalyzeCycles(r))
}

func TestValidate_DependencyCycle(t *testing.T) {
	errs := compile(t, `
name: f
blocks:
  - name: entry
    nodes:
      - {name: a, op: add, in: [b]}
      - {name: b, op: sub, in: [a]}
      - {name: r, op: return}
`)
	assert.Equal(t, []string{ErrDependencyCycle}, codes(errs))
	assert.Contains(t, errs[0].Message, "a -> b -> a")
}

func TestAnalyzeCycles_ThroughProjectionAndSelfLoop(t *testing.T) {
	r, err := Parse([]byte(`
name: f
blocks:
  - name: entry
    nodes:
      - {name: l, op: ld, in: [lp]}
      - {name: lp, op: proj, in: [l]}
      - {name: s, op: add, in: [s]}
`), FormatYAML, "t.yaml")
	require.NoError(t, err)

	cycles := AnalyzeCycles(r)
	require.Len(t, cycles, 2)
	assert.Equal(t, []string{"l", "l"}, cycles[0].Path)
	assert.Equal(t, []string{"s", "s"}, cycles[1].Path)
	assert.Equal(t, "entry", cycles[0].Block)
}

func TestAnalyzeCycles_CrossBlockIsNotACycle(t *testing.T) {
	r, err := LoadFile("testdata/loop.yaml")
	require.NoError(t, err)
	assert.Empty(t, AnalyzeCycles(r))
}

func TestValidate_StructuralProblems(t *testing.T) {
	errs := compile(t, `
name: f
blocks:
  - name: entry
    nodes:
      - {name: x, op: add}
      - {name: j1, op: ba}
      - {name: j2, op: return}
      - {name: bad, op: add, in: [j1]}
  - name: next
    preds: [x]
    nodes: []
  - name: island
    nodes: []
`)
	assert.ElementsMatch(t, []string{
		ErrControlFlowOperand,
		ErrMultipleControlFlow,
		ErrEdgeNotControl,
		ErrUnreachableBlock,
	}, codes(errs))
}

func TestValidate_CriticalEdge(t *testing.T) {
	errs := compile(t, `
name: diamond
blocks:
  - name: entry
    nodes:
      - {name: a, op: add}
      - {name: c, op: cmp, in: [a]}
      - {name: br, op: bicc, in: [c]}
      - {name: t, op: proj, in: [br], num: 0}
      - {name: f, op: proj, in: [br], num: 1}
  - name: join
    preds: [jt, f]
    nodes:
      - {name: r, op: return}
  - name: then
    preds: [t]
    nodes:
      - {name: jt, op: ba}
`)
	require.Equal(t, []string{ErrCriticalEdge}, codes(errs))
	assert.Equal(t, "block.join.preds", errs[0].Field)
	assert.Contains(t, errs[0].Message, "critical edge f from block entry")
}

func TestValidate_CriticalEdgeSplit(t *testing.T) {
	errs := compile(t, `
name: diamond
blocks:
  - name: entry
    nodes:
      - {name: a, op: add}
      - {name: c, op: cmp, in: [a]}
      - {name: br, op: bicc, in: [c]}
      - {name: t, op: proj, in: [br], num: 0}
      - {name: f, op: proj, in: [br], num: 1}
  - name: join
    preds: [jf, jt]
    nodes:
      - {name: r, op: return}
  - name: then
    preds: [t]
    nodes:
      - {name: jt, op: ba}
  - name: else
    preds: [f]
    nodes:
      - {name: jf, op: ba}
`)
	assert.Empty(t, errs)
}

func TestValidate_DetachedBranchProjection(t *testing.T) {
	errs := compile(t, `
name: misplaced
blocks:
  - name: entry
    nodes:
      - {name: k, op: mov}
      - {name: c, op: cmp, in: [k]}
      - {name: br, op: bicc, in: [c]}
  - name: then
    preds: [t]
    nodes:
      - {name: t, op: proj, in: [br], num: 0}
      - {name: r1, op: return}
  - name: else
    preds: [f]
    nodes:
      - {name: f, op: proj, in: [br], num: 1}
      - {name: r2, op: return}
`)
	assert.ElementsMatch(t, []string{
		ErrUnreachableBlock, ErrDetachedEdge,
		ErrUnreachableBlock, ErrDetachedEdge,
	}, codes(errs))

	var detached []ValidationError
	for _, e := range errs {
		if e.Code == ErrDetachedEdge {
			detached = append(detached, e)
		}
	}
	require.Len(t, detached, 2)
	assert.Equal(t, "block.then.t", detached[0].Field)
	assert.Equal(t, "projection of br must be declared in block entry", detached[0].Message)
}

func TestValidationError_Format(t *testing.T) {
	e := ValidationError{Field: "block.entry", Message: "oops", Code: ErrUnreachableBlock}
	assert.Equal(t, "[E203] block.entry: oops", e.Error())
}
