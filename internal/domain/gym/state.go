package gym

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"sync"
)

// AgentStatus is one agent's bookkeeping as seen by the client: the reward
// and termination flag of the last processed step. It is not the environment
// state itself.
type AgentStatus struct {
	Reward       float64 `json:"reward"`
	IsTerminated bool    `json:"is_terminated"`
}

// Requests and results travel in generation-tagged envelopes. A client that
// abandons a blocked call (request timeout) leaves its request queued; the
// tick loop still processes it at a later pause, and the tag lets the next
// client call recognize and discard that stale result instead of taking it
// as its own.
type stepRequest struct {
	gen     uint64
	actions []*string
}

type stepResult struct {
	gen   uint64
	flags []bool
}

type resetRequest struct {
	gen uint64
}

type resetResult struct {
	gen uint64
	ok  bool
}

// State is the shared environment record: the single source of truth shared
// between the engine tick loop and the network server. A is the host-decoded
// action type, P the opaque environment-state snapshot published for
// observation queries.
//
// The mutex guards the per-agent arrays, the snapshot and the generation
// counters only. It is never held across a blocking mailbox operation;
// callers take short critical sections, copy what they need, and release
// before blocking.
type State[A, P any] struct {
	mu sync.Mutex

	settings     Settings
	rewards      []float64
	terminations []bool
	actions      []*A
	envState     *P
	frames       []*image.RGBA

	// stepGen/resetGen count submitted requests; activeStepGen and
	// activeResetGen hold the generation of the request the tick loop
	// consumed last, so result envelopes carry the request they answer.
	stepGen        uint64
	activeStepGen  uint64
	resetGen       uint64
	activeResetGen uint64

	stepRequests  Mailbox[stepRequest]
	stepResults   Mailbox[stepResult]
	resetRequests Mailbox[resetRequest]
	resetResults  Mailbox[resetResult]
}

// NewState allocates the mailboxes and zero-initialized per-agent arrays.
// Every per-agent array keeps length settings.NumAgents for the lifetime of
// the record.
func NewState[A, P any](settings Settings) *State[A, P] {
	settings = settings.withDefaults()
	n := settings.NumAgents
	return &State[A, P]{
		settings:      settings,
		rewards:       make([]float64, n),
		terminations:  make([]bool, n),
		actions:       make([]*A, n),
		frames:        make([]*image.RGBA, n),
		stepRequests:  NewMailbox[stepRequest](),
		stepResults:   NewMailbox[stepResult](),
		resetRequests: NewMailbox[resetRequest](),
		resetResults:  NewMailbox[resetResult](),
	}
}

func (s *State[A, P]) Settings() Settings {
	return s.settings
}

func (s *State[A, P]) NumAgents() int {
	return s.settings.NumAgents
}

// ---------------------------------------------------------------------------
// Tick-loop side: request draining. The processors always check the Is*
// predicates first so the frame budget is never spent blocking here.
// ---------------------------------------------------------------------------

// IsNextAction reports whether a step request is queued and unconsumed.
func (s *State[A, P]) IsNextAction() bool {
	return !s.stepRequests.IsEmpty()
}

// IsResetRequest reports whether a reset request is queued and unconsumed.
func (s *State[A, P]) IsResetRequest() bool {
	return !s.resetRequests.IsEmpty()
}

// ReceiveActionStrings blocks until a step request is available and consumes
// it. Callers needing non-blocking semantics must verify IsNextAction first.
func (s *State[A, P]) ReceiveActionStrings() []*string {
	req := s.stepRequests.Recv()
	s.mu.Lock()
	s.activeStepGen = req.gen
	s.mu.Unlock()
	return req.actions
}

// ReceiveResetRequest blocks until a reset request is available and consumes
// it. The payload is a pure signal and is discarded.
func (s *State[A, P]) ReceiveResetRequest() {
	req := s.resetRequests.Recv()
	s.mu.Lock()
	s.activeResetGen = req.gen
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Host-logic side: bookkeeping mutation and result signaling.
// ---------------------------------------------------------------------------

// SendStepResult delivers step results to the waiting client call. A result
// for the same request already in the slot is kept (a request answered once
// cannot be answered twice by competing systems); a result left behind by an
// abandoned request is evicted so the fresh one is not lost.
func (s *State[A, P]) SendStepResult(results []bool) {
	s.mu.Lock()
	gen := s.activeStepGen
	s.mu.Unlock()
	if parked, ok := s.stepResults.TryRecv(); ok && parked.gen == gen {
		s.stepResults.TrySend(parked)
		return
	}
	s.stepResults.TrySend(stepResult{gen: gen, flags: results})
}

// SendResetResult delivers the reset-complete signal, with the same
// duplicate and stale-result handling as SendStepResult.
func (s *State[A, P]) SendResetResult(result bool) {
	s.mu.Lock()
	gen := s.activeResetGen
	s.mu.Unlock()
	if parked, ok := s.resetResults.TryRecv(); ok && parked.gen == gen {
		s.resetResults.TrySend(parked)
		return
	}
	s.resetResults.TrySend(resetResult{gen: gen, ok: result})
}

// SetReward records an agent's reward. An out-of-range index is a
// programming error and panics rather than corrupt bookkeeping.
func (s *State[A, P]) SetReward(agentIndex int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards[agentIndex] = value
}

// SetTerminated records an agent's termination flag. Out-of-range indexes
// panic, as with SetReward.
func (s *State[A, P]) SetTerminated(agentIndex int, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminations[agentIndex] = value
}

// SetAction stores an agent's host-decoded action. A nil action marks a
// no-op agent.
func (s *State[A, P]) SetAction(agentIndex int, action *A) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[agentIndex] = action
}

// Action returns the last stored action for an agent.
func (s *State[A, P]) Action(agentIndex int) *A {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions[agentIndex]
}

// SetEnvState publishes the latest environment snapshot, overwriting any
// previous value. There is no staleness guarantee beyond "most recent
// publish".
func (s *State[A, P]) SetEnvState(value P) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envState = &value
}

// EnvState returns the most recently published snapshot, or false when
// nothing was published yet.
func (s *State[A, P]) EnvState() (P, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.envState == nil {
		var zero P
		return zero, false
	}
	return *s.envState, true
}

// SetFrame publishes one agent's rendered frame for the visual-observation
// endpoint. Capture and color conversion are the host's concern.
func (s *State[A, P]) SetFrame(agentIndex int, frame *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[agentIndex] = frame
}

// Reset clears every termination and reward and signals reset completion.
// Host logic must call it once the world has been repositioned; it is the
// canonical "environment reset complete" signal.
func (s *State[A, P]) Reset() {
	s.mu.Lock()
	for i := range s.terminations {
		s.terminations[i] = false
		s.rewards[i] = 0
	}
	s.mu.Unlock()

	s.SendResetResult(true)
}

// ---------------------------------------------------------------------------
// Network side: the ports.Environment surface. Submit pushes the request
// envelope, Await parks the handler until host logic signals, and the reads
// below reflect the just-processed request once the signal arrived.
// ---------------------------------------------------------------------------

// SubmitStep queues one batch of per-agent action strings. The batch is
// atomic: either all agents' actions arrive together or none do. A
// well-behaved client submits at most one step at a time; SubmitStep blocks
// if an unconsumed request is still queued.
func (s *State[A, P]) SubmitStep(ctx context.Context, actions []*string) error {
	if len(actions) != s.settings.NumAgents {
		return fmt.Errorf("%w: got %d actions, want %d", ErrActionCount, len(actions), s.settings.NumAgents)
	}
	s.mu.Lock()
	s.stepGen++
	gen := s.stepGen
	s.mu.Unlock()
	return s.stepRequests.SendContext(ctx, stepRequest{gen: gen, actions: actions})
}

// AwaitStepResult blocks until host logic signals completion of the most
// recently submitted step or ctx is done. Results of requests abandoned by
// an earlier timed-out call are discarded, never returned. The boolean
// payload mirrors the termination flags at signal time; callers re-read
// AgentStatuses for the authoritative values.
func (s *State[A, P]) AwaitStepResult(ctx context.Context) ([]bool, error) {
	s.mu.Lock()
	want := s.stepGen
	s.mu.Unlock()
	for {
		res, err := s.stepResults.RecvContext(ctx)
		if err != nil {
			return nil, err
		}
		if res.gen == want {
			return res.flags, nil
		}
	}
}

// SubmitReset queues a reset request.
func (s *State[A, P]) SubmitReset(ctx context.Context) error {
	s.mu.Lock()
	s.resetGen++
	gen := s.resetGen
	s.mu.Unlock()
	return s.resetRequests.SendContext(ctx, resetRequest{gen: gen})
}

// AwaitResetResult blocks until host logic completes the most recently
// requested reset via Reset, discarding stale results like AwaitStepResult.
func (s *State[A, P]) AwaitResetResult(ctx context.Context) (bool, error) {
	s.mu.Lock()
	want := s.resetGen
	s.mu.Unlock()
	for {
		res, err := s.resetResults.RecvContext(ctx)
		if err != nil {
			return false, err
		}
		if res.gen == want {
			return res.ok, nil
		}
	}
}

// AgentStatuses snapshots rewards and terminations under the lock.
func (s *State[A, P]) AgentStatuses() []AgentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AgentStatus, len(s.rewards))
	for i := range s.rewards {
		out[i] = AgentStatus{Reward: s.rewards[i], IsTerminated: s.terminations[i]}
	}
	return out
}

// StateJSON serializes the most recent published snapshot. A never-published
// snapshot serializes as null.
func (s *State[A, P]) StateJSON() ([]byte, error) {
	s.mu.Lock()
	snapshot := s.envState
	s.mu.Unlock()
	if snapshot == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*snapshot)
}

// Frames snapshots the published per-agent frames. Entries are nil for
// agents that have not published yet.
func (s *State[A, P]) Frames() []*image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*image.RGBA, len(s.frames))
	copy(out, s.frames)
	return out
}
