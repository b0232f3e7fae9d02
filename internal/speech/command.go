package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// CommandEngine runs an external recognizer once per listening run and
// takes the first non-empty line it prints as the transcript. The locale is
// passed in SPEECH_LANG and SPEECH_MAX_ALTERNATIVES.
type CommandEngine struct {
	Command string
	Args    []string
}

func (e *CommandEngine) Name() string { return "command" }

func (e *CommandEngine) Recognize(ctx context.Context, opts Options) (string, error) {
	cmdPath := strings.TrimSpace(e.Command)
	if cmdPath == "" {
		return "", &RecognitionError{Code: CodeAudioCapture, Err: fmt.Errorf("speech: command not configured")}
	}
	cmd := exec.CommandContext(ctx, cmdPath, e.Args...)
	cmd.Env = append(os.Environ(),
		"SPEECH_LANG="+opts.Language,
		"SPEECH_MAX_ALTERNATIVES="+strconv.Itoa(opts.MaxAlternatives),
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", &RecognitionError{Code: CodeAudioCapture, Err: fmt.Errorf("speech: run %s: %w", cmdPath, err)}
		}
		return "", &RecognitionError{Code: CodeAudioCapture, Err: fmt.Errorf("speech: run %s: %w: %s", cmdPath, err, msg)}
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", ErrNoSpeech
}
