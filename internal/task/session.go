package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfxtract/internal/document"
	"github.com/local/pdfxtract/internal/extract"
	"github.com/local/pdfxtract/internal/metrics"
)

// Orchestrator runs one extraction attempt. task depends only on this
// interface so the session loop can be tested with a fake.
type Orchestrator interface {
	Run(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error)
}

// State of the password-retry machine.
type State int

const (
	Idle State = iota
	Running
	AwaitingPassword
	Retrying
)

// Session owns the interactive loop: one goroutine consumes posted closures
// in FIFO order, so all session state is touched from a single goroutine.
// Extraction attempts run on an ephemeral worker goroutine each; at most one
// worker is active at a time because controls are disabled while one runs.
type Session struct {
	orch  Orchestrator
	sink  func(Event)
	posts chan func()
	done  chan struct{}

	ctx     context.Context
	state   State
	pending extract.Request // request parked while awaiting a password
}

// NewSession creates a session emitting events through sink. Run must be
// called before submitting work.
func NewSession(orch Orchestrator, sink func(Event)) *Session {
	return &Session{
		orch:  orch,
		sink:  sink,
		posts: make(chan func(), 256),
		done:  make(chan struct{}),
	}
}

// Run consumes posted work until ctx is cancelled. It must run on exactly
// one goroutine.
func (s *Session) Run(ctx context.Context) {
	s.ctx = ctx
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.posts:
			fn()
		}
	}
}

// post marshals fn onto the session loop. Order of posts is order of calls;
// posts made before Run starts are buffered.
func (s *Session) post(fn func()) {
	select {
	case s.posts <- fn:
	case <-s.done:
	}
}

// Submit starts an extraction attempt. Rejected with a log event if another
// attempt is already in flight.
func (s *Session) Submit(req extract.Request) {
	s.post(func() {
		if s.state != Idle {
			s.sink(Event{Type: EventLog, Message: "A task is already running."})
			return
		}
		s.start(req, Running)
	})
}

// SubmitPassword resumes a parked attempt with the supplied password. An
// empty string is a real password attempt, not a cancellation.
func (s *Session) SubmitPassword(password string) {
	s.post(func() {
		if s.state != AwaitingPassword {
			return
		}
		s.sink(Event{Type: EventLog, Message: "Retrying with provided password..."})
		s.start(s.pending.WithPassword(uuid.NewString(), password), Retrying)
	})
}

// CancelPassword abandons the parked attempt. Cancellation is not a failure:
// no error is reported and controls re-enable.
func (s *Session) CancelPassword() {
	s.post(func() {
		if s.state != AwaitingPassword {
			return
		}
		s.sink(Event{Type: EventLog, Message: "Password entry cancelled. Extraction aborted."})
		s.idle()
	})
}

func (s *Session) start(req extract.Request, st State) {
	if req.AttemptID == "" {
		req.AttemptID = uuid.NewString()
	}
	s.state = st
	s.sink(Event{Type: EventControls, Enabled: false})
	s.sink(Event{Type: EventLog, Message: fmt.Sprintf("Starting %s...", taskName(req))})
	if req.Kind == extract.KindText && req.UseOCR {
		s.sink(Event{Type: EventProgress, Indeterminate: true})
	} else {
		s.sink(Event{Type: EventProgress, Fraction: 0})
	}

	rep := &loopReporter{s: s}
	go func() {
		res, err := s.orch.Run(s.ctx, req, rep)
		s.post(func() { s.finish(req, res, err) })
	}()
}

func (s *Session) finish(req extract.Request, res extract.Result, err error) {
	switch {
	case errors.Is(err, document.ErrPasswordRequired):
		s.state = AwaitingPassword
		s.pending = req
		metrics.IncPasswordPrompt()
		s.sink(Event{
			Type:    EventPasswordPrompt,
			Message: "This PDF is password protected. Enter the password to continue:",
		})
		return
	case err != nil:
		log.Error().Err(err).Str("attempt", req.AttemptID).Msg("extraction attempt failed")
		s.sink(Event{
			Type:    EventError,
			Message: fmt.Sprintf("An error occurred during %s: %v", taskName(req), err),
		})
	default:
		s.sink(Event{Type: EventResult, Message: res.Message, File: res.File})
	}
	s.idle()
}

// idle is the single terminal transition: every outcome except the password
// prompt lands here and unconditionally re-enables controls.
func (s *Session) idle() {
	s.state = Idle
	s.pending = extract.Request{}
	s.sink(Event{Type: EventProgress, Fraction: 0})
	s.sink(Event{Type: EventControls, Enabled: true})
}

func taskName(req extract.Request) string {
	return strings.ToLower(req.Kind.Title())
}

// loopReporter forwards worker progress onto the session loop so events
// reach the sink in FIFO order with everything else.
type loopReporter struct {
	s *Session
}

func (r *loopReporter) Progress(fraction float64) {
	r.s.post(func() {
		r.s.sink(Event{Type: EventProgress, Fraction: fraction})
	})
}

func (r *loopReporter) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.s.post(func() {
		r.s.sink(Event{Type: EventLog, Message: msg})
	})
}
