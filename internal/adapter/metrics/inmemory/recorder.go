package inmemory

import (
	"sync"
	"time"
)

type Snapshot struct {
	StepTotal      uint64 `json:"step_total"`
	StepOK         uint64 `json:"step_ok"`
	StepTimeout    uint64 `json:"step_timeout"`
	ResetTotal     uint64 `json:"reset_total"`
	PauseCycles    uint64 `json:"pause_cycles"`
	StepLatencyMS  int64  `json:"step_latency_ms_total"`
	MaxStepLatency int64  `json:"step_latency_ms_max"`
}

// Recorder keeps process-local KPI counters for the /ops/kpi endpoint. Step
// counters are bumped from network handler goroutines, pause cycles from the
// tick loop.
type Recorder struct {
	mu           sync.Mutex
	stepOK       uint64
	stepTimeout  uint64
	resets       uint64
	pauses       uint64
	latencyTotal time.Duration
	latencyMax   time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordStep(latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stepOK++
	r.latencyTotal += latency
	if latency > r.latencyMax {
		r.latencyMax = latency
	}
}

func (r *Recorder) RecordStepTimeout() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stepTimeout++
}

func (r *Recorder) RecordReset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *Recorder) RecordPause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauses++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		StepTotal:      r.stepOK + r.stepTimeout,
		StepOK:         r.stepOK,
		StepTimeout:    r.stepTimeout,
		ResetTotal:     r.resets,
		PauseCycles:    r.pauses,
		StepLatencyMS:  r.latencyTotal.Milliseconds(),
		MaxStepLatency: r.latencyMax.Milliseconds(),
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
