package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type EventKind int

const (
	EventStart EventKind = iota
	EventResult
	EventError
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is a lifecycle signal of one listening run. SessionID is fresh for
// every Start.
type Event struct {
	Kind       EventKind
	SessionID  string
	Transcript string
	Err        *RecognitionError
}

// Session listens for one transcript at a time. It may be started again
// after it ends.
type Session struct {
	engine  Engine
	opts    Options
	handler func(Event)

	mu        sync.Mutex
	listening bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func newSession(engine Engine, opts Options, handler func(Event)) *Session {
	if handler == nil {
		handler = func(Event) {}
	}
	return &Session{engine: engine, opts: opts, handler: handler, done: closedChan()}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Listening reports whether a run is in progress.
func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Done is closed once the current run has emitted EventEnd.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Start begins listening. EventStart is emitted before Start returns;
// EventResult or EventError and then EventEnd follow asynchronously.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.listening {
		s.mu.Unlock()
		return ErrAlreadyListening
	}
	runCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	done := make(chan struct{})
	s.listening = true
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.handler(Event{Kind: EventStart, SessionID: id})
	go s.run(runCtx, id, done)
	return nil
}

func (s *Session) run(ctx context.Context, id string, done chan struct{}) {
	defer close(done)

	text, err := s.engine.Recognize(ctx, s.opts)
	switch {
	case ctx.Err() != nil && err != nil:
		// stopped
	case err != nil:
		s.handler(Event{Kind: EventError, SessionID: id, Err: toRecognitionError(err)})
	default:
		s.handler(Event{Kind: EventResult, SessionID: id, Transcript: strings.TrimSpace(text)})
	}

	s.mu.Lock()
	s.listening = false
	s.cancel()
	s.mu.Unlock()

	s.handler(Event{Kind: EventEnd, SessionID: id})
}

// Stop ends the current run, if any. It is safe to call repeatedly.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listening && s.cancel != nil {
		s.cancel()
	}
}
