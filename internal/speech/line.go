package speech

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineEngine treats each non-empty input line as one spoken transcript.
// It is used for terminals and for piping the output of an external
// recognizer.
type LineEngine struct {
	r     io.Reader
	once  sync.Once
	lines chan string
}

func NewLineEngine(r io.Reader) *LineEngine {
	return &LineEngine{r: r, lines: make(chan string)}
}

func (e *LineEngine) Name() string { return "line" }

func (e *LineEngine) Recognize(ctx context.Context, _ Options) (string, error) {
	e.once.Do(func() { go e.readLines() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-e.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return line, nil
	}
}

func (e *LineEngine) readLines() {
	defer close(e.lines)
	scanner := bufio.NewScanner(e.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		e.lines <- line
	}
}
