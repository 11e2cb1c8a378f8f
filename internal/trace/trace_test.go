package trace

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AssignsSeqAcrossKinds(t *testing.T) {
	m := NewMemory()
	m.BeginBlock(BlockStart{Block: 1, BranchCondition: 3})
	m.Decide(Decision{Block: 1, Ready: []int64{2, 3}, Chosen: 2})
	m.Decide(Decision{Block: 1, Ready: []int64{3}, Chosen: 3})

	blocks := m.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, int64(1), blocks[0].Seq)
	assert.Equal(t, int64(3), blocks[0].BranchCondition)

	decisions := m.Decisions()
	require.Len(t, decisions, 2)
	assert.Equal(t, int64(2), decisions[0].Seq)
	assert.Equal(t, int64(3), decisions[1].Seq)
}

func TestMemory_CopiesSlices(t *testing.T) {
	m := NewMemory()
	ready := []int64{1, 2}
	m.Decide(Decision{Ready: ready, Chosen: 1})
	ready[0] = 99

	assert.Equal(t, []int64{1, 2}, m.Decisions()[0].Ready)
}

func TestMemory_SessionAndCounts(t *testing.T) {
	m := NewMemory()
	m.BeginBlock(BlockStart{Block: 1})
	m.Decide(Decision{Block: 1, Ready: []int64{4, 5}, Chosen: 5, Hazards: []Hazard{{Node: 4, Kind: HazardLoad}}})
	m.Decide(Decision{Block: 1, Ready: []int64{4}, Chosen: 4})
	m.Decide(Decision{Block: 1, Ready: []int64{6, 7}, Chosen: 6, Fallback: true,
		Hazards: []Hazard{{Node: 6, Kind: HazardBranch}, {Node: 7, Kind: HazardMulDiv}}})

	s := m.Session("sess-1", "f", "abc", "sparc", "filter")
	assert.Equal(t, "sess-1", s.ID)
	assert.Equal(t, "sparc", s.Scheduler)
	assert.Len(t, s.Blocks, 1)
	assert.Len(t, s.Decisions, 3)
	assert.Equal(t, 3, s.HazardCount())
	assert.Equal(t, 1, s.FallbackCount())
}

func TestDiscard_ImplementsRecorder(t *testing.T) {
	var r Recorder = Discard{}
	r.BeginBlock(BlockStart{Block: 1})
	r.Decide(Decision{Chosen: 1})
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a := g.Generate()
	b := g.Generate()

	assert.NotEqual(t, a, b)
	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
