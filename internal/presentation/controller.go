package presentation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ev-voice-shop/internal/domain"
	"ev-voice-shop/internal/speech"
)

const updatesBuffer = 32

type Relay interface {
	Ask(ctx context.Context, transcript string) (domain.QueryResult, error)
}

// Controller wires speech capture to the relay and publishes views.
// Relay calls are keyed by speech session id: starting a new session
// cancels the previous call and any late answer from it is dropped.
type Controller struct {
	relay        Relay
	relayTimeout time.Duration

	// startMu serializes Start so a losing caller cannot supersede the
	// session the winner just started.
	startMu sync.Mutex

	mu          sync.Mutex
	view        View
	session     *speech.Session
	current     string
	cancelRelay context.CancelFunc
	relays      sync.WaitGroup
	closed      bool
	updates     chan View
}

type ControllerOption func(*Controller)

// WithRelayTimeout bounds each relay call. Zero means no timeout.
func WithRelayTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.relayTimeout = d
	}
}

// NewController creates a Controller. An unavailable capability yields a
// controller stuck in PhaseUnsupported rather than an error.
func NewController(capability speech.Capability, relay Relay, opts ...ControllerOption) (*Controller, error) {
	if capability == nil {
		return nil, errors.New("presentation: speech capability must not be nil")
	}
	if relay == nil {
		return nil, errors.New("presentation: relay must not be nil")
	}
	c := &Controller{
		relay:   relay,
		updates: make(chan View, updatesBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.view = InitialView(capability.Available())
	if capability.Available() {
		session, err := capability.NewSession(speech.DefaultOptions(), c.handleEvent)
		if err != nil {
			slog.Warn("speech session unavailable", "err", err)
			c.view = InitialView(false)
		} else {
			c.session = session
		}
	}
	c.publishLocked()
	return c, nil
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Updates delivers every view change. Slow readers miss intermediate views
// but can always read the latest with View.
func (c *Controller) Updates() <-chan View {
	return c.updates
}

// Start clears the result and begins listening. Starting while already
// listening is logged and ignored.
func (c *Controller) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return speech.ErrCapabilityUnavailable
	}
	if c.closed {
		c.mu.Unlock()
		return errors.New("presentation: controller closed")
	}
	session := c.session
	c.mu.Unlock()

	if session.Listening() {
		slog.Warn("speech recognition already started")
		return nil
	}

	c.mu.Lock()
	c.supersedeLocked("")
	c.setViewLocked(c.view.Cleared())
	c.mu.Unlock()

	if err := session.Start(ctx); err != nil {
		if errors.Is(err, speech.ErrAlreadyListening) {
			slog.Warn("speech recognition already started")
			return nil
		}
		return err
	}
	return nil
}

// Stop ends listening. An in-flight relay call is not canceled.
func (c *Controller) Stop() {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

// Close stops listening, cancels any relay call and closes Updates.
func (c *Controller) Close() {
	c.Stop()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.supersedeLocked("")
	session := c.session
	c.mu.Unlock()

	if session != nil {
		<-session.Done()
	}
	c.relays.Wait()

	c.mu.Lock()
	close(c.updates)
	c.mu.Unlock()
}

func (c *Controller) handleEvent(ev speech.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed && ev.Kind != speech.EventEnd {
		return
	}

	switch ev.Kind {
	case speech.EventStart:
		c.supersedeLocked(ev.SessionID)
		c.setViewLocked(c.view.Started())
	case speech.EventResult:
		if ev.SessionID != c.current {
			return
		}
		c.setViewLocked(c.view.Transcribed(ev.Transcript))
		c.launchRelayLocked(ev.SessionID, ev.Transcript)
	case speech.EventError:
		if ev.SessionID != c.current {
			return
		}
		code := speech.CodeUnknown
		if ev.Err != nil {
			code = ev.Err.Code
		}
		c.setViewLocked(c.view.RecognitionFailed(code))
	case speech.EventEnd:
		if ev.SessionID != c.current || c.closed {
			return
		}
		c.setViewLocked(c.view.Ended())
	}
}

// supersedeLocked makes id the current session and cancels the relay call
// of the previous one.
func (c *Controller) supersedeLocked(id string) {
	if c.cancelRelay != nil {
		c.cancelRelay()
		c.cancelRelay = nil
	}
	c.current = id
	if c.view.Pending {
		v := c.view
		v.Pending = false
		c.view = v
	}
}

func (c *Controller) launchRelayLocked(id, transcript string) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.relayTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.relayTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	c.cancelRelay = cancel

	c.relays.Add(1)
	go func() {
		defer c.relays.Done()
		defer cancel()

		result, err := c.relay.Ask(ctx, transcript)

		c.mu.Lock()
		defer c.mu.Unlock()
		if id != c.current || c.closed {
			slog.Debug("dropping stale relay answer", "session_id", id)
			return
		}
		c.cancelRelay = nil
		if err != nil {
			c.setViewLocked(c.view.RelayFailed(err))
			return
		}
		c.setViewLocked(c.view.Answered(result))
	}()
}

func (c *Controller) setViewLocked(v View) {
	c.view = v
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	if c.closed {
		return
	}
	select {
	case c.updates <- c.view:
	default:
	}
}
