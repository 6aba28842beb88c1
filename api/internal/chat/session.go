// Package chat is the conversation state machine: Idle or AwaitingSolution,
// an ordered message list and a pending input buffer.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"compify/api/internal/solver/types"
)

type State int

const (
	Idle State = iota
	AwaitingSolution
)

func (s State) String() string {
	if s == AwaitingSolution {
		return "awaiting_solution"
	}
	return "idle"
}

// Solver is the part of the gateway the session needs.
type Solver interface {
	RequestSolution(ctx context.Context, in types.SolveRequest) (types.Solution, error)
}

// Input is the pending text and at most one image data URL.
type Input struct {
	Text  string
	Image string
}

func (in Input) Empty() bool {
	return strings.TrimSpace(in.Text) == "" && strings.TrimSpace(in.Image) == ""
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

// WithTimeout bounds each solve request.
func WithTimeout(d time.Duration) Option { return func(s *Session) { s.timeout = d } }

// WithOnChange registers a callback run after every state or message change.
// It is called without the session lock held.
func WithOnChange(fn func()) Option { return func(s *Session) { s.onChange = fn } }

type Session struct {
	solver   Solver
	log      *zap.Logger
	timeout  time.Duration
	onChange func()

	mu       sync.Mutex
	state    State
	input    Input
	messages []Message
}

func New(solver Solver, opts ...Option) *Session {
	s := &Session{solver: solver, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetInput overwrites the given fields of the pending input; nil leaves a field alone.
func (s *Session) SetInput(text, image *string) {
	s.mu.Lock()
	if text != nil {
		s.input.Text = *text
	}
	if image != nil {
		s.input.Image = *image
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Session) SetText(text string) { s.SetInput(&text, nil) }

func (s *Session) SetImage(dataURL string) { s.SetInput(nil, &dataURL) }

func (s *Session) ClearImage() {
	empty := ""
	s.SetInput(nil, &empty)
}

func (s *Session) Input() Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Busy() bool { return s.State() == AwaitingSolution }

// Messages returns a snapshot of the conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// LatestSolution returns the most recent solution card, if any.
func (s *Session) LatestSolution() (*SolutionCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if c, ok := s.messages[i].(*SolutionCard); ok {
			return c, true
		}
	}
	return nil, false
}

// Submit dispatches the pending input. It is a no-op returning ok=false when a
// request is already in flight or the input is empty. Otherwise the user message
// is appended, the input cleared and the solve started. reply yields the
// assistant message once it has been appended and the session is Idle again,
// then is closed.
func (s *Session) Submit(ctx context.Context) (reply <-chan Message, ok bool) {
	s.mu.Lock()
	if s.state != Idle || s.input.Empty() {
		s.mu.Unlock()
		return nil, false
	}
	in := s.input
	s.input = Input{}
	s.messages = append(s.messages, &UserMessage{meta: newMeta(), Text: in.Text, Image: in.Image})
	s.state = AwaitingSolution
	s.mu.Unlock()
	s.changed()

	ch := make(chan Message, 1)
	go s.run(context.WithoutCancel(ctx), in, ch)
	return ch, true
}

func (s *Session) run(ctx context.Context, in Input, done chan<- Message) {
	var reply Message
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("solve panicked", zap.Any("panic", r))
			reply = &Notice{meta: newMeta(), Text: noticeFailed, Kind: types.KindUnknown}
		}
		s.finish(reply)
		done <- reply
		close(done)
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	sol, err := s.solver.RequestSolution(ctx, types.SolveRequest{
		ProblemText: strings.TrimSpace(in.Text),
		Image:       in.Image,
	})
	if err != nil {
		s.log.Warn("solve failed", zap.Error(err), zap.String("kind", string(types.KindOf(err))))
		reply = &Notice{meta: newMeta(), Text: NoticeFor(err), Kind: types.KindOf(err)}
		return
	}
	reply = &SolutionCard{meta: newMeta(), Solution: sol}
}

// finish appends the reply and returns to Idle.
func (s *Session) finish(reply Message) {
	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.state = Idle
	s.mu.Unlock()
	s.changed()
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
