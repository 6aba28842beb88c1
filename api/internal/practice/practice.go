// Package practice is the sub-session for attempting one related problem and
// having the candidate solution verified.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"compify/api/internal/solver/types"
)

type State int

const (
	NoneSelected State = iota
	Selected
	Verifying
	Verified
)

func (s State) String() string {
	switch s {
	case Selected:
		return "selected"
	case Verifying:
		return "verifying"
	case Verified:
		return "verified"
	default:
		return "none_selected"
	}
}

var (
	ErrNotSelected    = errors.New("practice: no problem selected")
	ErrBusy           = errors.New("practice: verification already in flight")
	ErrEmptyCandidate = errors.New("practice: candidate solution is empty")
	// ErrStale is delivered when the result arrived after Close or a new selection
	// and was discarded.
	ErrStale = errors.New("practice: result discarded, sub-session changed")
	// ErrVerifierPanic reports a verifier that panicked instead of returning.
	ErrVerifierPanic = errors.New("practice: verifier panicked")
)

// Verifier is the part of the gateway the sub-session needs.
type Verifier interface {
	RequestVerification(ctx context.Context, in types.VerifyRequest) (types.VerificationOutcome, error)
}

// Result is delivered once per SubmitCandidate.
type Result struct {
	Outcome types.VerificationOutcome
	Err     error
}

// Snapshot is a copy of the sub-session for rendering.
type Snapshot struct {
	State     State
	Problem   types.PracticeProblem
	Candidate string
	Outcome   types.VerificationOutcome
}

// Hint is shown while there is no outcome yet.
func (s Snapshot) Hint() string {
	if s.State != Selected && s.State != Verifying {
		return ""
	}
	return "Hint: Focus on " + s.Problem.SimilarityLogic
}

// ShowCorrectSolution reports whether the full solution should be displayed.
// It is only revealed after an incorrect verdict.
func (s Snapshot) ShowCorrectSolution() bool {
	return s.State == Verified && !s.Outcome.IsCorrect
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

func WithTimeout(d time.Duration) Option { return func(s *Session) { s.timeout = d } }

// WithOnChange registers a callback run after every change, without the lock held.
func WithOnChange(fn func()) Option { return func(s *Session) { s.onChange = fn } }

type Session struct {
	verifier Verifier
	log      *zap.Logger
	timeout  time.Duration
	onChange func()

	mu        sync.Mutex
	gen       uint64 // bumped on every select and close
	state     State
	problem   types.PracticeProblem
	candidate string
	outcome   types.VerificationOutcome
}

func New(v Verifier, opts ...Option) *Session {
	s := &Session{verifier: v, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SelectProblem resets the sub-session to Selected(p) from any state.
func (s *Session) SelectProblem(p types.PracticeProblem) {
	s.mu.Lock()
	s.gen++
	s.state = Selected
	s.problem = p
	s.candidate = ""
	s.outcome = types.VerificationOutcome{}
	s.mu.Unlock()
	s.changed()
}

// SetCandidate updates the draft solution without submitting it.
func (s *Session) SetCandidate(text string) {
	s.mu.Lock()
	if s.state == NoneSelected {
		s.mu.Unlock()
		return
	}
	s.candidate = text
	s.mu.Unlock()
	s.changed()
}

// SubmitCandidate starts verification of text against the selected problem.
// It is accepted in Selected, and in Verified where the new outcome replaces
// the old one. The returned channel yields exactly one Result.
func (s *Session) SubmitCandidate(ctx context.Context, text string) (<-chan Result, error) {
	s.mu.Lock()
	switch {
	case s.state == NoneSelected:
		s.mu.Unlock()
		return nil, ErrNotSelected
	case s.state == Verifying:
		s.mu.Unlock()
		return nil, ErrBusy
	case strings.TrimSpace(text) == "":
		s.mu.Unlock()
		return nil, ErrEmptyCandidate
	}
	s.candidate = text
	s.outcome = types.VerificationOutcome{}
	s.state = Verifying
	gen := s.gen
	req := types.VerifyRequest{ProblemText: s.problem.ProblemText, CandidateSolution: text}
	s.mu.Unlock()
	s.changed()

	ch := make(chan Result, 1)
	go s.run(context.WithoutCancel(ctx), gen, req, ch)
	return ch, nil
}

func (s *Session) run(ctx context.Context, gen uint64, req types.VerifyRequest, ch chan<- Result) {
	var (
		out types.VerificationOutcome
		err error
	)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("verification panicked", zap.Any("panic", r))
			out, err = types.VerificationOutcome{}, fmt.Errorf("%w: %v", ErrVerifierPanic, r)
		}
		s.finish(gen, out, err, ch)
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	out, err = s.verifier.RequestVerification(ctx, req)
}

// finish applies the result unless the sub-session moved on, then delivers it.
func (s *Session) finish(gen uint64, out types.VerificationOutcome, err error, ch chan<- Result) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug("stale verification dropped", zap.Bool("failed", err != nil))
		ch <- Result{Err: ErrStale}
		return
	}
	if err != nil {
		s.state = Selected
	} else {
		s.state = Verified
		s.outcome = out
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		s.log.Warn("verification failed", zap.Error(err), zap.String("kind", string(types.KindOf(err))))
		ch <- Result{Err: err}
		return
	}
	ch <- Result{Outcome: out}
}

// Close discards everything and returns to NoneSelected. An in-flight
// verification still completes but its result is dropped.
func (s *Session) Close() {
	s.mu.Lock()
	s.gen++
	s.state = NoneSelected
	s.problem = types.PracticeProblem{}
	s.candidate = ""
	s.outcome = types.VerificationOutcome{}
	s.mu.Unlock()
	s.changed()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Problem: s.problem, Candidate: s.candidate, Outcome: s.outcome}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
