package trace

import "sync"

// Memory is a Recorder that keeps every observation in memory.
//
// Thread-safety: safe for concurrent use, although a scheduling session only
// ever records from one goroutine.
type Memory struct {
	mu        sync.Mutex
	seq       int64
	blocks    []BlockStart
	decisions []Decision
}

// NewMemory creates an empty in-memory recorder. Its first observation gets
// seq 1.
func NewMemory() *Memory {
	return &Memory{}
}

// BeginBlock implements Recorder.
func (m *Memory) BeginBlock(b BlockStart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	b.Seq = m.seq
	m.blocks = append(m.blocks, b)
}

// Decide implements Recorder.
func (m *Memory) Decide(d Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	d.Seq = m.seq
	d.Ready = append([]int64(nil), d.Ready...)
	d.Hazards = append([]Hazard(nil), d.Hazards...)
	m.decisions = append(m.decisions, d)
}

// Decisions returns a copy of the recorded decisions in seq order.
func (m *Memory) Decisions() []Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Decision(nil), m.decisions...)
}

// Blocks returns a copy of the recorded block starts in seq order.
func (m *Memory) Blocks() []BlockStart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BlockStart(nil), m.blocks...)
}

// Session packages everything recorded so far. The caller supplies the
// identifying fields.
func (m *Memory) Session(id, routine, routineHash, scheduler, policy string) Session {
	return Session{
		ID:          id,
		Routine:     routine,
		RoutineHash: routineHash,
		Scheduler:   scheduler,
		Policy:      policy,
		Blocks:      m.Blocks(),
		Decisions:   m.Decisions(),
	}
}

