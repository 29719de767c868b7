package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	// ErrPlayerClosed is returned by Play after Close.
	ErrPlayerClosed = errors.New("player is closed")

	// ErrEmptyAudio is returned when there is nothing to play.
	ErrEmptyAudio = errors.New("audio data is empty")
)

// Track is a single playing stream.
type Track interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Close() error
}

// Device creates tracks on an output device.
type Device interface {
	NewTrack(r io.Reader) (Track, error)
}

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int // 44100 or 48000 Hz only
	Channels   int // 1 = mono, 2 = stereo
	BitDepth   int // 16 bits per sample
	BufferSize int // Buffer size in bytes

	// PollInterval is how often playback completion is checked.
	PollInterval time.Duration
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate:   44100,
		Channels:     1,
		BitDepth:     16,
		BufferSize:   4096,
		PollInterval: 10 * time.Millisecond,
	}
}

func validateConfig(config PlayerConfig) error {
	// oto only supports specific sample rates reliably
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}
	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}
	if config.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", config.BitDepth)
	}
	if config.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}
	return nil
}

// Player plays PCM clips one at a time.
type Player struct {
	device Device
	config PlayerConfig

	mu     sync.Mutex
	volume float64
	closed bool
}

// NewPlayer opens the default output device.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	device, err := openDevice(config)
	if err != nil {
		return nil, err
	}
	return NewPlayerWithDevice(device, config), nil
}

// NewPlayerWithDevice creates a player on an already opened device.
func NewPlayerWithDevice(device Device, config PlayerConfig) *Player {
	if config.PollInterval <= 0 {
		config.PollInterval = 10 * time.Millisecond
	}
	return &Player{
		device: device,
		config: config,
		volume: 1.0,
	}
}

// Play plays pcm and blocks until playback finished or ctx is done. The
// pcm slice is referenced by the track until Play returns.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return ErrEmptyAudio
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}

	track, err := p.device.NewTrack(bytes.NewReader(pcm))
	if err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}
	defer track.Close() //nolint:errcheck

	track.SetVolume(p.volume)
	track.Play()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for track.IsPlaying() {
		select {
		case <-ctx.Done():
			track.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Duration returns how long pcm plays with the player's format.
func (p *Player) Duration(pcm []byte) time.Duration {
	bytesPerSample := p.config.BitDepth / 8 * p.config.Channels
	if bytesPerSample == 0 || p.config.SampleRate == 0 {
		return 0
	}
	samples := len(pcm) / bytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(p.config.SampleRate)
}

// SetVolume sets the volume used for subsequent clips (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %.2f", volume)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	return nil
}

// Close marks the player closed. oto contexts cannot be closed, the device
// stays open for the life of the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
