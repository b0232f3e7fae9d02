package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"ev-voice-shop/internal/app"
	"ev-voice-shop/internal/config"
	"ev-voice-shop/internal/presentation"
	"ev-voice-shop/internal/speech"
)

// closeWatch marks input as exhausted once the engine reports it.
type closeWatch struct {
	speech.Engine
	closed atomic.Bool
}

func (w *closeWatch) Recognize(ctx context.Context, opts speech.Options) (string, error) {
	text, err := w.Engine.Recognize(ctx, opts)
	if errors.Is(err, speech.ErrInputClosed) {
		w.closed.Store(true)
	}
	return text, err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadVoice()
	app.SetupLogger(cfg.LogLevel)

	client, err := presentation.NewRelayClient(cfg.APIURL, nil)
	if err != nil {
		slog.Error("failed to create relay client", "err", err)
		os.Exit(1)
	}

	var (
		engine  *closeWatch
		trigger *bufio.Scanner
	)
	switch {
	case cfg.STTCommand == "none":
	case cfg.STTCommand != "":
		engine = &closeWatch{Engine: &speech.CommandEngine{Command: cfg.STTCommand, Args: cfg.STTArgs}}
		trigger = bufio.NewScanner(os.Stdin)
	default:
		engine = &closeWatch{Engine: speech.NewLineEngine(os.Stdin)}
	}

	var capability speech.Capability = speech.Unavailable{Reason: "VOICE_STT_COMMAND=none"}
	if engine != nil {
		capability = speech.NewCapability(engine)
	}

	c, err := presentation.NewController(capability, client, presentation.WithRelayTimeout(cfg.RelayTimeout))
	if err != nil {
		slog.Error("failed to create controller", "err", err)
		os.Exit(1)
	}
	defer c.Close()

	fmt.Println(presentation.Render(c.View()))
	if engine == nil {
		return
	}

	for ctx.Err() == nil && !engine.closed.Load() {
		if trigger != nil {
			fmt.Print("กด Enter เพื่อเริ่มพูด ")
			if !trigger.Scan() {
				return
			}
		}
		if err := c.Start(ctx); err != nil {
			slog.Error("failed to start listening", "err", err)
			return
		}
		v, ok := waitSettled(ctx, c)
		if !ok {
			return
		}
		if engine.closed.Load() {
			return
		}
		fmt.Println(strings.TrimRight(presentation.Render(v), "\n"))
		fmt.Println()
	}
}

// waitSettled prints status changes until the session has finished listening
// and its relay call, if any, has answered.
func waitSettled(ctx context.Context, c *presentation.Controller) (presentation.View, bool) {
	active := false
	last := ""
	for {
		select {
		case <-ctx.Done():
			return presentation.View{}, false
		case v, ok := <-c.Updates():
			if !ok {
				return presentation.View{}, false
			}
			if v.Status != last {
				slog.Debug("status", "status", v.Status)
				last = v.Status
			}
			if !v.Settled() {
				active = true
				continue
			}
			if active {
				return v, true
			}
		}
	}
}
