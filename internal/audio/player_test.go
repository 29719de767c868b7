package audio

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"
)

// fakeTrack reports playing for a fixed number of polls.
type fakeTrack struct {
	remaining atomic.Int32
	played    atomic.Bool
	closed    atomic.Bool
	volume    float64
}

func (t *fakeTrack) Play()               { t.played.Store(true) }
func (t *fakeTrack) Pause()              { t.remaining.Store(0) }
func (t *fakeTrack) SetVolume(v float64) { t.volume = v }
func (t *fakeTrack) IsPlaying() bool     { return t.remaining.Add(-1) >= 0 }
func (t *fakeTrack) Close() error {
	t.closed.Store(true)
	return nil
}

type fakeDevice struct {
	polls int32
	last  *fakeTrack
	err   error
}

func (d *fakeDevice) NewTrack(r io.Reader) (Track, error) {
	if d.err != nil {
		return nil, d.err
	}
	_, _ = io.Copy(io.Discard, r)
	t := &fakeTrack{}
	t.remaining.Store(d.polls)
	d.last = t
	return t, nil
}

func testConfig() PlayerConfig {
	cfg := DefaultPlayerConfig()
	cfg.PollInterval = time.Millisecond
	return cfg
}

func TestPlayer_PlayBlocksUntilFinished(t *testing.T) {
	dev := &fakeDevice{polls: 5}
	p := NewPlayerWithDevice(dev, testConfig())

	if err := p.Play(context.Background(), []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !dev.last.played.Load() {
		t.Error("track was not started")
	}
	if dev.last.remaining.Load() > 0 {
		t.Error("Play returned before the track finished")
	}
	if !dev.last.closed.Load() {
		t.Error("track was not closed")
	}
}

func TestPlayer_PlayRespectsContext(t *testing.T) {
	dev := &fakeDevice{polls: 1 << 30}
	p := NewPlayerWithDevice(dev, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Play(ctx, []byte{1, 2})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Play error = %v, want deadline exceeded", err)
	}
}

func TestPlayer_Errors(t *testing.T) {
	p := NewPlayerWithDevice(&fakeDevice{}, testConfig())

	if err := p.Play(context.Background(), nil); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("Play(nil) = %v, want ErrEmptyAudio", err)
	}

	_ = p.Close()
	if err := p.Play(context.Background(), []byte{1}); !errors.Is(err, ErrPlayerClosed) {
		t.Errorf("Play after Close = %v, want ErrPlayerClosed", err)
	}

	failing := NewPlayerWithDevice(&fakeDevice{err: errors.New("no device")}, testConfig())
	if err := failing.Play(context.Background(), []byte{1}); err == nil {
		t.Error("expected error from failing device")
	}
}

func TestPlayer_Volume(t *testing.T) {
	dev := &fakeDevice{polls: 1}
	p := NewPlayerWithDevice(dev, testConfig())

	if err := p.SetVolume(1.5); err == nil {
		t.Error("expected error for volume > 1")
	}
	if err := p.SetVolume(0.25); err != nil {
		t.Fatalf("SetVolume failed: %v", err)
	}
	_ = p.Play(context.Background(), []byte{1, 2})
	if dev.last.volume != 0.25 {
		t.Errorf("track volume = %v, want 0.25", dev.last.volume)
	}
}

func TestPlayer_Duration(t *testing.T) {
	p := NewPlayerWithDevice(&fakeDevice{}, testConfig())

	// one second of 16-bit mono at 44.1kHz
	pcm := make([]byte, 44100*2)
	if d := p.Duration(pcm); d != time.Second {
		t.Errorf("Duration = %v, want 1s", d)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(DefaultPlayerConfig()); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	bad := DefaultPlayerConfig()
	bad.SampleRate = 22050
	if err := validateConfig(bad); err == nil {
		t.Error("expected error for 22050 Hz")
	}
}
