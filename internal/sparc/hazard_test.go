package sparc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/sparc"
	"github.com/roach88/sparcsched/internal/testutil"
	"github.com/roach88/sparcsched/internal/trace"
)

// hazardFixture declares a load, a multiply and a spread of readers.
func hazardFixture() *testutil.Builder {
	b := testutil.NewBuilder("f")
	b.Block("entry")
	b.Node("k", ir.OpMov)
	b.Node("l", ir.OpLd, "k")
	b.Proj("lv", "l", 0)
	b.Proj("lm", "l", 1)
	b.Node("m", ir.OpSMul, "k", "k")
	b.Proj("mv", "m", 0)

	b.Node("use_direct", ir.OpAdd, "k", "l")
	b.Node("use_proj", ir.OpAdd, "lv", "k")
	b.Node("use_none", ir.OpSub, "k", "k")
	b.Node("st_addr", ir.OpSt, "k", "lv")
	b.Node("st_value", ir.OpSt, "lv", "k")
	b.Node("st_value_direct", ir.OpSt, "l", "k")
	b.Node("st_both", ir.OpSt, "lv", "lm")

	b.Node("mul_direct", ir.OpAdd, "m", "k")
	b.Node("mul_proj", ir.OpAdd, "mv", "k")
	b.Node("mul_st_value", ir.OpSt, "m", "k")
	b.Node("mul_st_addr", ir.OpSt, "k", "m")

	b.Node("c", ir.OpCmp, "k", "k")
	return b
}

func TestHasLoadHazard(t *testing.T) {
	b := hazardFixture()
	h := &sparc.HazardState{LastLoad: b.N("l")}

	tests := []struct {
		node string
		want bool
	}{
		{"use_direct", true},
		{"use_proj", true},
		{"use_none", false},
		{"st_addr", true},
		{"st_value", false},
		{"st_value_direct", false},
		{"st_both", true},
		{"mul_direct", false},
		{"c", false},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			assert.Equal(t, tt.want, h.HasLoadHazard(b.N(tt.node)))
		})
	}
}

func TestHasLoadHazard_NoLastLoad(t *testing.T) {
	b := hazardFixture()
	h := &sparc.HazardState{}
	assert.False(t, h.HasLoadHazard(b.N("use_direct")))
	assert.False(t, h.HasLoadHazard(b.N("use_proj")))
}

func TestHasLoadHazard_OnlyOneProjectionLevel(t *testing.T) {
	b := testutil.NewBuilder("f")
	b.Block("entry")
	b.Node("l", ir.OpLd)
	b.Proj("p1", "l", 0)
	b.Proj("p2", "p1", 0)
	b.Node("use", ir.OpAdd, "p2")

	h := &sparc.HazardState{LastLoad: b.N("l")}
	assert.False(t, h.HasLoadHazard(b.N("use")))
}

func TestHasMulDivHazard(t *testing.T) {
	b := hazardFixture()
	h := &sparc.HazardState{LastMulDiv: b.N("m")}

	tests := []struct {
		node string
		want bool
	}{
		{"mul_direct", true},
		{"mul_proj", false},
		{"mul_st_value", false},
		{"mul_st_addr", true},
		{"use_none", false},
		{"use_direct", false},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			assert.Equal(t, tt.want, h.HasMulDivHazard(b.N(tt.node)))
		})
	}
}

func TestHasBranchHazard(t *testing.T) {
	b := hazardFixture()

	h := &sparc.HazardState{}
	assert.False(t, h.HasBranchHazard(b.N("c")))

	h.LastBranchCondition = b.N("c")
	assert.True(t, h.HasBranchHazard(b.N("c")))
	assert.False(t, h.HasBranchHazard(b.N("use_none")))
}

func TestRecordSelection(t *testing.T) {
	b := hazardFixture()
	h := &sparc.HazardState{}

	h.RecordSelection(b.N("l"))
	assert.Same(t, b.N("l"), h.LastLoad)
	assert.Nil(t, h.LastMulDiv)

	h.RecordSelection(b.N("m"))
	assert.Nil(t, h.LastLoad)
	assert.Same(t, b.N("m"), h.LastMulDiv)
}

func TestRecordSelection_IdempotentClear(t *testing.T) {
	b := hazardFixture()
	h := &sparc.HazardState{LastLoad: b.N("l"), LastMulDiv: b.N("m")}

	h.RecordSelection(b.N("use_none"))
	h.RecordSelection(b.N("use_none"))
	assert.Nil(t, h.LastLoad)
	assert.Nil(t, h.LastMulDiv)
}

func TestRecordSelection_LeavesBranchCondition(t *testing.T) {
	b := hazardFixture()
	h := &sparc.HazardState{LastBranchCondition: b.N("c")}

	h.RecordSelection(b.N("c"))
	assert.Same(t, b.N("c"), h.LastBranchCondition)
}

func TestRecordSelection_AllMulDivVariants(t *testing.T) {
	ops := []ir.Op{ir.OpSMul, ir.OpSMulCCZero, ir.OpSMulh, ir.OpUMulh, ir.OpSDiv, ir.OpUDiv}
	r := ir.NewRoutine("f")
	blk := r.NewBlock("entry")
	for _, op := range ops {
		n := r.NewNode(blk, op, "")
		h := &sparc.HazardState{}
		h.RecordSelection(n)
		assert.Same(t, n, h.LastMulDiv, "op %s", op)
	}
}

func TestHazards_Order(t *testing.T) {
	b := testutil.NewBuilder("f")
	b.Block("entry")
	b.Node("l", ir.OpLd)
	b.Node("m", ir.OpUDiv)
	b.Node("c", ir.OpCmp, "l", "m")

	h := &sparc.HazardState{
		LastLoad:            b.N("l"),
		LastMulDiv:          b.N("m"),
		LastBranchCondition: b.N("c"),
	}
	assert.Equal(t,
		[]trace.HazardKind{trace.HazardLoad, trace.HazardBranch, trace.HazardMulDiv},
		h.Hazards(b.N("c")))
	assert.Empty(t, h.Hazards(b.N("l")))
}

func TestHazardState_Reset(t *testing.T) {
	b := hazardFixture()
	h := &sparc.HazardState{LastLoad: b.N("l"), LastMulDiv: b.N("m"), LastBranchCondition: b.N("c")}
	h.Reset()
	assert.Equal(t, sparc.HazardState{}, *h)
}
