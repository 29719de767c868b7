package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("CONVERTPRO_TEST_DIR", "cache")

	tests := []struct {
		in   string
		want string
	}{
		{"~/convertpro.yml", filepath.Join(home, "convertpro.yml")},
		{"/tmp/$CONVERTPRO_TEST_DIR/x", "/tmp/cache/x"},
		{"plain", "plain"},
	}
	for _, tc := range tests {
		if got := ExpandPath(tc.in); got != tc.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsStyleFile(t *testing.T) {
	tests := map[string]bool{
		"auto":              false,
		"dark":              false,
		"~/styles/my.json":  true,
		"~/styles/my.JSON":  true,
		"something-unknown": false,
	}
	for in, want := range tests {
		if got := IsStyleFile(in); got != want {
			t.Errorf("IsStyleFile(%q) = %v, want %v", in, got, want)
		}
	}
}
