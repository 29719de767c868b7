package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/convertpro/internal/audio"
	"golang.org/x/time/rate"
)

// Speaker vocalizes text. Speak must not return before the utterance has
// finished playing.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, text string) error

// Speak implements Speaker.
func (f SpeakerFunc) Speak(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Silent discards every utterance.
type Silent struct{}

// Speak implements Speaker.
func (Silent) Speak(context.Context, string) error { return nil }

// Engine names a speech synthesis backend.
type Engine string

const (
	// EngineSystem uses the OS speech command (espeak-ng, espeak or say).
	EngineSystem Engine = "system"

	// EngineGTTS uses gtts-cli and ffmpeg, played through the audio device.
	EngineGTTS Engine = "gtts"

	// EngineNone disables speech output.
	EngineNone Engine = "none"
)

var (
	// ErrInvalidEngine indicates an unknown engine name.
	ErrInvalidEngine = errors.New("invalid speech engine")

	// ErrEngineNotAvailable indicates the engine's binaries are missing.
	ErrEngineNotAvailable = errors.New("speech engine is not available")
)

// SpeakerConfig holds settings for NewSpeaker.
type SpeakerConfig struct {
	Engine Engine

	// Voice is passed to the system command (-v), optional.
	Voice string

	// Rate in words per minute for the system command, 0 keeps the default.
	Rate int

	// Language and Slow configure gTTS.
	Language string
	Slow     bool

	// Timeout bounds a single synthesis step, defaults to 30s.
	Timeout time.Duration
}

// NewSpeaker builds the speaker for cfg.Engine.
func NewSpeaker(cfg SpeakerConfig) (Speaker, error) {
	switch cfg.Engine {
	case EngineNone, "":
		return Silent{}, nil
	case EngineSystem:
		return NewCommandSpeaker(cfg)
	case EngineGTTS:
		player, err := audio.NewPlayer(audio.DefaultPlayerConfig())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEngineNotAvailable, err)
		}
		s, err := NewGTTSSpeaker(cfg, player)
		if err != nil {
			_ = player.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q (use system, gtts or none)", ErrInvalidEngine, cfg.Engine)
	}
}

// ParseEngine validates an engine name.
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case EngineSystem, EngineGTTS, EngineNone:
		return e, nil
	case "":
		return EngineNone, nil
	default:
		return "", fmt.Errorf("%w: %q (use system, gtts or none)", ErrInvalidEngine, name)
	}
}

// waitDelay bounds how long a killed command may keep its output pipes open.
const waitDelay = time.Second

// systemCommands are tried in order.
var systemCommands = []string{"espeak-ng", "espeak", "say"}

// CommandSpeaker runs an OS speech command once per utterance.
type CommandSpeaker struct {
	path    string
	args    []string
	timeout time.Duration
}

// NewCommandSpeaker locates a speech command on PATH.
func NewCommandSpeaker(cfg SpeakerConfig) (*CommandSpeaker, error) {
	for _, name := range systemCommands {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		return newCommandSpeaker(name, path, cfg), nil
	}
	return nil, fmt.Errorf("%w: none of %s found in PATH", ErrEngineNotAvailable, strings.Join(systemCommands, ", "))
}

func newCommandSpeaker(name, path string, cfg SpeakerConfig) *CommandSpeaker {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	var args []string
	if cfg.Voice != "" {
		args = append(args, "-v", cfg.Voice)
	}
	// text goes through stdin so it can never be read as a flag
	if name == "say" {
		if cfg.Rate > 0 {
			args = append(args, "-r", strconv.Itoa(cfg.Rate))
		}
		args = append(args, "-f", "-")
	} else {
		if cfg.Rate > 0 {
			args = append(args, "-s", strconv.Itoa(cfg.Rate))
		}
		args = append(args, "--stdin")
	}

	return &CommandSpeaker{path: path, args: args, timeout: cfg.Timeout}
}

// Speak implements Speaker.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.path, s.args...) //nolint:gosec
	cmd.WaitDelay = waitDelay
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("speech command timeout: %w", ctx.Err())
		}
		return fmt.Errorf("%s failed: %w, stderr: %s", s.path, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// PCMPlayer plays raw 16-bit PCM synchronously.
type PCMPlayer interface {
	Play(ctx context.Context, pcm []byte) error
}

// GTTSSpeaker synthesizes with gtts-cli, converts the MP3 to PCM with ffmpeg
// and plays it.
type GTTSSpeaker struct {
	language string
	slow     bool
	timeout  time.Duration
	player   PCMPlayer
	limiter  *rate.Limiter

	// run executes a command with stdin and returns stdout; replaced in tests.
	run func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// maxTextSize is the longest text gTTS accepts in one request.
const maxTextSize = 5000

// NewGTTSSpeaker checks for gtts-cli and ffmpeg and creates the speaker.
func NewGTTSSpeaker(cfg SpeakerConfig, player PCMPlayer) (*GTTSSpeaker, error) {
	for _, bin := range []string{"gtts-cli", "ffmpeg"} {
		if _, err := exec.LookPath(bin); err != nil {
			return nil, fmt.Errorf("%w: %s not found in PATH", ErrEngineNotAvailable, bin)
		}
	}
	return newGTTSSpeaker(cfg, player), nil
}

func newGTTSSpeaker(cfg SpeakerConfig, player PCMPlayer) *GTTSSpeaker {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GTTSSpeaker{
		language: cfg.Language,
		slow:     cfg.Slow,
		timeout:  cfg.Timeout,
		player:   player,
		// conservative, to avoid being blocked by Google
		limiter: rate.NewLimiter(rate.Every(time.Minute/50), 1),
		run:     runCommand,
	}
}

// Speak implements Speaker.
func (s *GTTSSpeaker) Speak(ctx context.Context, text string) error {
	text = truncateUTF8(text, maxTextSize)

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	synthCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{"-l", s.language, "-f", "-", "-o", "-"}
	if s.slow {
		args = append(args, "--slow")
	}
	mp3, err := s.run(synthCtx, []byte(text), "gtts-cli", args...)
	if err != nil {
		return fmt.Errorf("MP3 generation failed: %w", err)
	}
	if len(mp3) == 0 {
		return errors.New("gtts-cli produced no MP3 output")
	}

	pcm, err := s.run(synthCtx, mp3, "ffmpeg",
		"-i", "pipe:0",
		"-f", "s16le", // signed 16-bit little-endian
		"-ar", "44100", // oto sample rate
		"-ac", "1",
		"pipe:1")
	if err != nil {
		return fmt.Errorf("MP3 to PCM conversion failed: %w", err)
	}

	return s.player.Play(ctx, pcm)
}

// truncateUTF8 cuts s to at most n bytes without splitting a character.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func runCommand(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.WaitDelay = waitDelay
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s timeout: %w", name, ctx.Err())
		}
		return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Close releases the audio player.
func (s *GTTSSpeaker) Close() error {
	if c, ok := s.player.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
