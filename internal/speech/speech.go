// Package speech abstracts speech recognition behind a capability that is
// either available, handing out listening sessions, or unavailable.
package speech

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCapabilityUnavailable is returned when no recognizer exists in the
	// host environment.
	ErrCapabilityUnavailable = errors.New("speech: recognition capability unavailable")
	// ErrAlreadyListening is returned by Start on a session that is listening.
	ErrAlreadyListening = errors.New("speech: already listening")
	// ErrNoSpeech is returned by engines that heard nothing usable.
	ErrNoSpeech = errors.New("speech: no speech detected")
	// ErrInputClosed is returned by engines whose input has ended.
	ErrInputClosed = errors.New("speech: input closed")
)

// Error codes carried by EventError.
const (
	CodeNoSpeech     = "no-speech"
	CodeAudioCapture = "audio-capture"
	CodeNetwork      = "network"
	CodeUnknown      = "unknown"
)

// Options configures a listening session.
type Options struct {
	Language        string
	MaxAlternatives int
	InterimResults  bool
}

// DefaultOptions returns the fixed Thai locale configuration: one
// alternative and final results only.
func DefaultOptions() Options {
	return Options{Language: "th-TH", MaxAlternatives: 1, InterimResults: false}
}

// Engine produces one final transcript per call.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, opts Options) (string, error)
}

// RecognitionError is reported when the engine fails mid-session.
type RecognitionError struct {
	Code string
	Err  error
}

func (e *RecognitionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("speech: recognition error: %s", e.Code)
	}
	return fmt.Sprintf("speech: recognition error: %s: %v", e.Code, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

func toRecognitionError(err error) *RecognitionError {
	var re *RecognitionError
	if errors.As(err, &re) {
		return re
	}
	code := CodeUnknown
	switch {
	case errors.Is(err, ErrNoSpeech):
		code = CodeNoSpeech
	case errors.Is(err, ErrInputClosed):
		code = CodeAudioCapture
	case errors.Is(err, context.DeadlineExceeded):
		code = CodeNetwork
	}
	return &RecognitionError{Code: code, Err: err}
}

// Capability is the host's speech recognition support.
type Capability interface {
	Available() bool
	NewSession(opts Options, handler func(Event)) (*Session, error)
}

// NewCapability returns an available capability backed by engine, or
// Unavailable when engine is nil.
func NewCapability(engine Engine) Capability {
	if engine == nil {
		return Unavailable{Reason: "no speech engine configured"}
	}
	return available{engine: engine}
}

type available struct {
	engine Engine
}

func (a available) Available() bool { return true }

func (a available) NewSession(opts Options, handler func(Event)) (*Session, error) {
	return newSession(a.engine, opts, handler), nil
}

// Unavailable is the capability of a host without speech recognition.
// It never constructs sessions.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Available() bool { return false }

func (u Unavailable) NewSession(Options, func(Event)) (*Session, error) {
	if u.Reason == "" {
		return nil, ErrCapabilityUnavailable
	}
	return nil, fmt.Errorf("%w: %s", ErrCapabilityUnavailable, u.Reason)
}
