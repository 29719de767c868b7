package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{"system", EngineSystem, false},
		{"GTTS", EngineGTTS, false},
		{" none ", EngineNone, false},
		{"", EngineNone, false},
		{"piper", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEngine(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEngine(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidEngine) {
			t.Errorf("ParseEngine(%q) error = %v, want ErrInvalidEngine", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseEngine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewSpeaker_NoneIsSilent(t *testing.T) {
	sp, err := NewSpeaker(SpeakerConfig{Engine: EngineNone})
	if err != nil {
		t.Fatalf("NewSpeaker failed: %v", err)
	}
	if _, ok := sp.(Silent); !ok {
		t.Errorf("NewSpeaker(none) = %T, want Silent", sp)
	}
	if err := sp.Speak(context.Background(), "hello"); err != nil {
		t.Errorf("Silent.Speak = %v", err)
	}

	if _, err := NewSpeaker(SpeakerConfig{Engine: "bogus"}); !errors.Is(err, ErrInvalidEngine) {
		t.Errorf("NewSpeaker(bogus) error = %v, want ErrInvalidEngine", err)
	}
}

func TestCommandSpeaker_Args(t *testing.T) {
	tests := []struct {
		name string
		cfg  SpeakerConfig
		want string
	}{
		{"espeak-ng", SpeakerConfig{}, "--stdin"},
		{"espeak-ng", SpeakerConfig{Voice: "en-us", Rate: 160}, "-v en-us -s 160 --stdin"},
		{"say", SpeakerConfig{Rate: 200}, "-r 200 -f -"},
		{"say", SpeakerConfig{Voice: "Samantha"}, "-v Samantha -f -"},
	}
	for _, tt := range tests {
		s := newCommandSpeaker(tt.name, "/usr/bin/"+tt.name, tt.cfg)
		if got := strings.Join(s.args, " "); got != tt.want {
			t.Errorf("%s %+v: args = %q, want %q", tt.name, tt.cfg, got, tt.want)
		}
	}
}

func TestCommandSpeaker_SpeakRunsCommand(t *testing.T) {
	// cat reads the utterance from stdin like the real engines do
	s := &CommandSpeaker{path: "cat", timeout: defaultTestTimeout}
	if err := s.Speak(context.Background(), "hello"); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	failing := &CommandSpeaker{path: "false", timeout: defaultTestTimeout}
	if err := failing.Speak(context.Background(), "hello"); err == nil {
		t.Error("expected error from failing command")
	}
}

type fakePCMPlayer struct {
	played []byte
	err    error
}

func (p *fakePCMPlayer) Play(_ context.Context, pcm []byte) error {
	p.played = pcm
	return p.err
}

func TestGTTSSpeaker_Pipeline(t *testing.T) {
	player := &fakePCMPlayer{}
	s := newGTTSSpeaker(SpeakerConfig{Language: "de", Slow: true}, player)

	var calls []string
	s.run = func(_ context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
		calls = append(calls, name+" "+strings.Join(args, " "))
		switch name {
		case "gtts-cli":
			if string(stdin) != "Hallo Welt" {
				t.Errorf("gtts-cli stdin = %q", stdin)
			}
			return []byte("mp3"), nil
		case "ffmpeg":
			if string(stdin) != "mp3" {
				t.Errorf("ffmpeg stdin = %q", stdin)
			}
			return []byte("pcm"), nil
		}
		return nil, fmt.Errorf("unexpected command %s", name)
	}

	if err := s.Speak(context.Background(), "Hallo Welt"); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if string(player.played) != "pcm" {
		t.Errorf("played = %q, want pcm", player.played)
	}
	if len(calls) != 2 || !strings.Contains(calls[0], "-l de") || !strings.Contains(calls[0], "--slow") {
		t.Errorf("calls = %v", calls)
	}
}

func TestGTTSSpeaker_TruncatesOnCharacterBoundary(t *testing.T) {
	player := &fakePCMPlayer{}
	s := newGTTSSpeaker(SpeakerConfig{}, player)

	// "é" is two bytes; the limit falls in the middle of the last one
	text := strings.Repeat("a", maxTextSize-1) + "éé"

	var got []byte
	s.run = func(_ context.Context, stdin []byte, name string, _ ...string) ([]byte, error) {
		if name == "gtts-cli" {
			got = stdin
			return []byte("mp3"), nil
		}
		return []byte("pcm"), nil
	}

	if err := s.Speak(context.Background(), text); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if !utf8.Valid(got) {
		t.Error("gtts-cli received invalid UTF-8")
	}
	if want := strings.Repeat("a", maxTextSize-1); string(got) != want {
		t.Errorf("gtts-cli got %d bytes, want %d", len(got), len(want))
	}
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "h"},
		{"héllo", 3, "hé"},
		{"日本語", 4, "日"},
		{"日本語", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateUTF8(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateUTF8(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestGTTSSpeaker_Failures(t *testing.T) {
	player := &fakePCMPlayer{}
	s := newGTTSSpeaker(SpeakerConfig{}, player)

	s.run = func(context.Context, []byte, string, ...string) ([]byte, error) {
		return nil, nil
	}
	if err := s.Speak(context.Background(), "hi"); err == nil {
		t.Error("expected error for empty MP3")
	}
	if player.played != nil {
		t.Error("nothing should have been played")
	}
}
