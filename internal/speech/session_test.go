package speech

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeEngine returns whatever is sent on results, or blocks until the
// context ends.
type fakeEngine struct {
	results chan fakeResult
	opts    Options
}

type fakeResult struct {
	text string
	err  error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{results: make(chan fakeResult, 1)}
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, opts Options) (string, error) {
	f.opts = opts
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-f.results:
		return r.text, r.err
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func newTestSession(t *testing.T, engine Engine) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := NewCapability(engine).NewSession(DefaultOptions(), rec.handle)
	require.NoError(t, err)
	return s, rec
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end")
	}
}

func TestUnavailable_NeverConstructsSession(t *testing.T) {
	c := NewCapability(nil)
	require.False(t, c.Available())
	s, err := c.NewSession(DefaultOptions(), nil)
	require.Nil(t, s)
	require.ErrorIs(t, err, ErrCapabilityUnavailable)

	_, err = Unavailable{}.NewSession(DefaultOptions(), nil)
	require.ErrorIs(t, err, ErrCapabilityUnavailable)
}

func TestDefaultOptions(t *testing.T) {
	require.Equal(t, Options{Language: "th-TH", MaxAlternatives: 1}, DefaultOptions())
}

func TestSession_ResultLifecycle(t *testing.T) {
	engine := newFakeEngine()
	s, rec := newTestSession(t, engine)

	require.NoError(t, s.Start(context.Background()))
	require.True(t, s.Listening())
	require.Equal(t, []EventKind{EventStart}, rec.kinds())

	engine.results <- fakeResult{text: "  รุ่นรถยี่ห้อBYD มีอะไรบ้าง "}
	waitDone(t, s)

	require.Equal(t, []EventKind{EventStart, EventResult, EventEnd}, rec.kinds())
	require.Equal(t, "รุ่นรถยี่ห้อBYD มีอะไรบ้าง", rec.events[1].Transcript)
	require.Equal(t, rec.events[0].SessionID, rec.events[2].SessionID)
	require.False(t, s.Listening())
	require.Equal(t, "th-TH", engine.opts.Language)
}

func TestSession_ErrorLifecycle(t *testing.T) {
	engine := newFakeEngine()
	s, rec := newTestSession(t, engine)

	require.NoError(t, s.Start(context.Background()))
	engine.results <- fakeResult{err: ErrNoSpeech}
	waitDone(t, s)

	require.Equal(t, []EventKind{EventStart, EventError, EventEnd}, rec.kinds())
	require.Equal(t, CodeNoSpeech, rec.events[1].Err.Code)
}

func TestSession_StartWhileListening(t *testing.T) {
	engine := newFakeEngine()
	s, rec := newTestSession(t, engine)

	require.NoError(t, s.Start(context.Background()))
	require.ErrorIs(t, s.Start(context.Background()), ErrAlreadyListening)
	require.Equal(t, []EventKind{EventStart}, rec.kinds())

	s.Stop()
	waitDone(t, s)
}

func TestSession_StopEmitsOnlyEnd(t *testing.T) {
	s, rec := newTestSession(t, newFakeEngine())

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()
	waitDone(t, s)

	require.Equal(t, []EventKind{EventStart, EventEnd}, rec.kinds())
}

func TestSession_StopWhenIdleIsNoop(t *testing.T) {
	s, rec := newTestSession(t, newFakeEngine())
	s.Stop()
	require.Empty(t, rec.kinds())
}

func TestSession_RestartGetsNewSessionID(t *testing.T) {
	engine := newFakeEngine()
	s, rec := newTestSession(t, engine)

	require.NoError(t, s.Start(context.Background()))
	engine.results <- fakeResult{text: "one"}
	waitDone(t, s)
	first := rec.last().SessionID

	require.NoError(t, s.Start(context.Background()))
	engine.results <- fakeResult{text: "two"}
	waitDone(t, s)

	require.NotEqual(t, first, rec.last().SessionID)
	require.Len(t, rec.kinds(), 6)
}

func TestToRecognitionError(t *testing.T) {
	require.Equal(t, CodeNoSpeech, toRecognitionError(ErrNoSpeech).Code)
	require.Equal(t, CodeAudioCapture, toRecognitionError(ErrInputClosed).Code)
	require.Equal(t, CodeNetwork, toRecognitionError(context.DeadlineExceeded).Code)
	require.Equal(t, CodeUnknown, toRecognitionError(errors.New("boom")).Code)

	custom := &RecognitionError{Code: "not-allowed"}
	require.Same(t, custom, toRecognitionError(custom))
	require.Contains(t, custom.Error(), "not-allowed")
}

// ---------------------------------------------------------------------------
// LineEngine
// ---------------------------------------------------------------------------

func TestLineEngine_OneTranscriptPerLine(t *testing.T) {
	e := NewLineEngine(strings.NewReader("first question\n\n   \nsecond question\n"))

	text, err := e.Recognize(context.Background(), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "first question", text)

	text, err = e.Recognize(context.Background(), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "second question", text)

	_, err = e.Recognize(context.Background(), DefaultOptions())
	require.ErrorIs(t, err, ErrInputClosed)
}

func TestLineEngine_ContextCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()
	e := NewLineEngine(r)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.Recognize(ctx, DefaultOptions())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// ---------------------------------------------------------------------------
// CommandEngine
// ---------------------------------------------------------------------------

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandEngine_FirstLine(t *testing.T) {
	requireShell(t)
	e := &CommandEngine{Command: "sh", Args: []string{"-c", `echo; echo "$SPEECH_LANG hello"; echo ignored`}}
	text, err := e.Recognize(context.Background(), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "th-TH hello", text)
}

func TestCommandEngine_NoOutput(t *testing.T) {
	requireShell(t)
	e := &CommandEngine{Command: "sh", Args: []string{"-c", "true"}}
	_, err := e.Recognize(context.Background(), DefaultOptions())
	require.ErrorIs(t, err, ErrNoSpeech)
}

func TestCommandEngine_Failure(t *testing.T) {
	requireShell(t)
	e := &CommandEngine{Command: "sh", Args: []string{"-c", "echo mic busy >&2; exit 3"}}
	_, err := e.Recognize(context.Background(), DefaultOptions())
	var re *RecognitionError
	require.ErrorAs(t, err, &re)
	require.Equal(t, CodeAudioCapture, re.Code)
	require.Contains(t, err.Error(), "mic busy")
}

func TestCommandEngine_NotConfigured(t *testing.T) {
	_, err := (&CommandEngine{}).Recognize(context.Background(), DefaultOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "not configured")
}
