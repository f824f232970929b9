// internal/publish/status.go
//
// In-memory publish state, one entry per site.  The HTTP handler returns
// 202 and the browser polls this; only the final repo name, URL, flag,
// and asset refs are persisted, so state here is lost on restart and
// that is acceptable (a restart mid-publish reads as idle and the user
// republishes).
package publish

import (
	"sync"
	"time"
)

// Phase is the coarse lifecycle of one site's publish.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseDone    Phase = "done"
	PhaseFailed  Phase = "failed"
)

// State is what the status endpoint reports.
type State struct {
	Phase      Phase      `json:"phase"`
	Message    string     `json:"message,omitempty"`
	URL        string     `json:"url,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// tracker guards the per-site state map.
type tracker struct {
	mu     sync.Mutex
	states map[uint64]State
}

func newTracker() *tracker {
	return &tracker{states: make(map[uint64]State)}
}

// begin transitions a site to running.  Returns false when a publish is
// already in flight, which is the caller's cue for ErrPublishInFlight.
func (t *tracker) begin(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[id].Phase == PhaseRunning {
		return false
	}
	now := time.Now()
	t.states[id] = State{Phase: PhaseRunning, StartedAt: &now}
	return true
}

func (t *tracker) succeed(id uint64, url, warning string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.states[id]
	now := time.Now()
	st.Phase = PhaseDone
	st.URL = url
	st.Message = warning
	st.FinishedAt = &now
	t.states[id] = st
}

func (t *tracker) fail(id uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.states[id]
	now := time.Now()
	st.Phase = PhaseFailed
	st.Message = err.Error()
	st.FinishedAt = &now
	t.states[id] = st
}

// get returns the current state, defaulting to idle for unknown sites.
func (t *tracker) get(id uint64) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[id]
	if !ok {
		return State{Phase: PhaseIdle}
	}
	return st
}
