package speech

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotUnderstood means audio was captured but no words were recognized.
	ErrNotUnderstood = errors.New("could not understand audio")

	// ErrRecognizerUnavailable means the recognition backend could not be
	// reached or run.
	ErrRecognizerUnavailable = errors.New("speech recognition service unavailable")
)

// Recognizer captures one phrase and returns it as text. Implementations
// return ErrNotUnderstood (possibly wrapped) when nothing usable was heard;
// any other error is a request failure.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context) (string, error)

// Listen implements Recognizer.
func (f RecognizerFunc) Listen(ctx context.Context) (string, error) {
	return f(ctx)
}

// DefaultListenCommand records from the default microphone until silence
// and transcribes with whisper.cpp.
const DefaultListenCommand = "sox -q -d -r 16000 -c 1 -b 16 -t wav - silence 1 0.1 1% 1 1.5 1% | whisper-cli -m \"${WHISPER_MODEL:-ggml-base.en.bin}\" -f - -nt -np"

// CommandRecognizer runs a shell pipeline that records until silence and
// prints the transcript on stdout.
type CommandRecognizer struct {
	shell   string
	command string
	timeout time.Duration
}

// NewCommandRecognizer creates a recognizer for the given shell command.
func NewCommandRecognizer(command string, timeout time.Duration) *CommandRecognizer {
	if command == "" {
		command = DefaultListenCommand
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &CommandRecognizer{shell: "sh", command: command, timeout: timeout}
}

// Listen implements Recognizer.
func (r *CommandRecognizer) Listen(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.shell, "-c", r.command) //nolint:gosec
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: listening timed out: %v", ErrRecognizerUnavailable, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v: %s", ErrRecognizerUnavailable, err, strings.TrimSpace(stderr.String()))
	}

	text := cleanTranscript(stdout.String())
	if text == "" {
		return "", ErrNotUnderstood
	}
	return text, nil
}

// LineRecognizer reads typed phrases, one per line. It stands in for a
// microphone when input is piped or scripted.
type LineRecognizer struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
}

// NewLineRecognizer reads phrases from r.
func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{scanner: bufio.NewScanner(r)}
}

// Listen implements Recognizer. It returns io.EOF wrapped in
// ErrRecognizerUnavailable once the input is exhausted.
func (r *LineRecognizer) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.scanner.Scan() {
		err := r.scanner.Err()
		if err == nil {
			err = io.EOF
		}
		return "", fmt.Errorf("%w: %w", ErrRecognizerUnavailable, err)
	}

	text := cleanTranscript(r.scanner.Text())
	if text == "" {
		return "", ErrNotUnderstood
	}
	return text, nil
}

// cleanTranscript joins lines and drops the bracketed annotations whisper
// emits for non-speech ("[BLANK_AUDIO]", "(wind blowing)").
func cleanTranscript(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '[' || r == '(':
			depth++
		case (r == ']' || r == ')') && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
