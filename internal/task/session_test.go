package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfxtract/internal/document"
	"github.com/local/pdfxtract/internal/extract"
)

// fakeOrch records requests and delegates outcomes to a test-supplied func.
type fakeOrch struct {
	mu   sync.Mutex
	reqs []extract.Request
	run  func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error)
}

func (f *fakeOrch) Run(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.run(ctx, req, rep)
}

func (f *fakeOrch) requests() []extract.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]extract.Request(nil), f.reqs...)
}

func newTestSession(t *testing.T, run func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error)) (*Session, *fakeOrch, chan Event) {
	t.Helper()
	orch := &fakeOrch{run: run}
	events := make(chan Event, 128)
	s := NewSession(orch, func(ev Event) { events <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)
	return s, orch, events
}

func nextEvent(t *testing.T, events chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

// waitType discards events until one of the wanted type arrives.
func waitType(t *testing.T, events chan Event, typ EventType) Event {
	t.Helper()
	for {
		ev := nextEvent(t, events)
		if ev.Type == typ {
			return ev
		}
	}
}

func textReq() extract.Request {
	return extract.Request{SourcePath: "in.pdf", OutputDir: "out", Kind: extract.KindText}
}

func TestSubmitSuccessEventOrder(t *testing.T) {
	s, _, events := newTestSession(t, func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
		return extract.Result{Message: "Text extraction complete! Saved to in_extracted_text.txt."}, nil
	})

	s.Submit(textReq())

	ev := nextEvent(t, events)
	assert.Equal(t, EventControls, ev.Type)
	assert.False(t, ev.Enabled, "controls disable when an attempt starts")

	ev = nextEvent(t, events)
	assert.Equal(t, EventLog, ev.Type)
	assert.Equal(t, "Starting text extraction...", ev.Message)

	ev = nextEvent(t, events)
	assert.Equal(t, EventProgress, ev.Type)
	assert.False(t, ev.Indeterminate)

	ev = nextEvent(t, events)
	assert.Equal(t, EventResult, ev.Type)
	assert.Equal(t, "Text extraction complete! Saved to in_extracted_text.txt.", ev.Message)

	ev = nextEvent(t, events)
	assert.Equal(t, EventProgress, ev.Type)

	ev = nextEvent(t, events)
	assert.Equal(t, EventControls, ev.Type)
	assert.True(t, ev.Enabled, "every terminal outcome re-enables controls")
}

func TestSubmitWhileBusy(t *testing.T) {
	release := make(chan struct{})
	s, orch, events := newTestSession(t, func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
		<-release
		return extract.Result{Message: "done"}, nil
	})

	s.Submit(textReq())
	waitType(t, events, EventProgress) // first attempt is running

	s.Submit(textReq())
	ev := waitType(t, events, EventLog)
	assert.Equal(t, "A task is already running.", ev.Message)

	close(release)
	waitType(t, events, EventResult)
	assert.Len(t, orch.requests(), 1, "the second submit must not reach the orchestrator")
}

func TestWorkerUpdatesArriveInOrder(t *testing.T) {
	s, _, events := newTestSession(t, func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
		rep.Progress(0.5)
		rep.Logf("halfway")
		rep.Progress(1.0)
		return extract.Result{Message: "done"}, nil
	})

	s.Submit(textReq())

	waitType(t, events, EventProgress) // initial reset
	ev := nextEvent(t, events)
	require.Equal(t, EventProgress, ev.Type)
	assert.Equal(t, 0.5, ev.Fraction)

	ev = nextEvent(t, events)
	require.Equal(t, EventLog, ev.Type)
	assert.Equal(t, "halfway", ev.Message)

	ev = nextEvent(t, events)
	require.Equal(t, EventProgress, ev.Type)
	assert.Equal(t, 1.0, ev.Fraction)

	ev = nextEvent(t, events)
	assert.Equal(t, EventResult, ev.Type)
}

func TestOCRTaskUsesIndeterminateProgress(t *testing.T) {
	s, _, events := newTestSession(t, func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
		return extract.Result{Message: "done"}, nil
	})

	req := textReq()
	req.UseOCR = true
	s.Submit(req)

	ev := waitType(t, events, EventProgress)
	assert.True(t, ev.Indeterminate)
}

func TestPasswordPromptAndRetry(t *testing.T) {
	s, orch, events := newTestSession(t, func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
		if !req.HasPassword {
			return extract.Result{}, document.ErrPasswordRequired
		}
		return extract.Result{Message: "done"}, nil
	})

	s.Submit(textReq())
	ev := waitType(t, events, EventPasswordPrompt)
	assert.Equal(t, "This PDF is password protected. Enter the password to continue:", ev.Message)

	s.SubmitPassword("s3cret")
	ev = waitType(t, events, EventLog)
	assert.Equal(t, "Retrying with provided password...", ev.Message)

	waitType(t, events, EventResult)
	ev = waitType(t, events, EventControls)
	assert.True(t, ev.Enabled)

	reqs := orch.requests()
	require.Len(t, reqs, 2)
	assert.False(t, reqs[0].HasPassword)
	assert.True(t, reqs[1].HasPassword)
	assert.Equal(t, "s3cret", reqs[1].Password)
	assert.NotEqual(t, reqs[0].AttemptID, reqs[1].AttemptID, "a retry is a fresh attempt")
	assert.Equal(t, reqs[0].SourcePath, reqs[1].SourcePath)
}

func TestEmptyPasswordIsRealAttempt(t *testing.T) {
	s, orch, events := newTestSession(t, func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
		if !req.HasPassword {
			return extract.Result{}, document.ErrPasswordRequired
		}
		return extract.Result{}, document.ErrWrongPassword
	})

	s.Submit(textReq())
	waitType(t, events, EventPasswordPrompt)

	s.SubmitPassword("")
	ev := waitType(t, events, EventError)
	assert.Contains(t, ev.Message, "An error occurred during text extraction")

	reqs := orch.requests()
	require.Len(t, reqs, 2, "an empty password still triggers a retry attempt")
	assert.True(t, reqs[1].HasPassword)
}

func TestPasswordCancel(t *testing.T) {
	s, orch, events := newTestSession(t, func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
		if !req.HasPassword {
			return extract.Result{}, document.ErrPasswordRequired
		}
		return extract.Result{Message: "done"}, nil
	})

	s.Submit(textReq())
	waitType(t, events, EventPasswordPrompt)

	s.CancelPassword()
	ev := waitType(t, events, EventLog)
	assert.Equal(t, "Password entry cancelled. Extraction aborted.", ev.Message)

	ev = waitType(t, events, EventControls)
	assert.True(t, ev.Enabled, "cancellation re-enables controls")
	assert.Len(t, orch.requests(), 1, "cancellation schedules no retry")

	// the session is idle again: a fresh submit runs
	s.Submit(textReq())
	waitType(t, events, EventPasswordPrompt)
	assert.Len(t, orch.requests(), 2)
}

func TestWrongPasswordSurfacesAsError(t *testing.T) {
	s, _, events := newTestSession(t, func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
		return extract.Result{}, document.ErrWrongPassword
	})

	req := textReq()
	req.Password = "wrong"
	req.HasPassword = true
	s.Submit(req)

	ev := waitType(t, events, EventError)
	assert.Contains(t, ev.Message, "incorrect password or unable to decrypt PDF")

	ev = waitType(t, events, EventControls)
	assert.True(t, ev.Enabled)
}

func TestPasswordIgnoredWhenNotAwaiting(t *testing.T) {
	s, orch, events := newTestSession(t, func(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
		return extract.Result{Message: "done"}, nil
	})

	s.SubmitPassword("stray")
	s.CancelPassword()

	s.Submit(textReq())
	waitType(t, events, EventResult)

	reqs := orch.requests()
	require.Len(t, reqs, 1)
	assert.False(t, reqs[0].HasPassword, "a stray password submission must not attach to a later task")
}
