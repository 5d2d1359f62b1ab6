package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInputValidate(t *testing.T) {
	t.Parallel()

	existing := filepath.Join(t.TempDir(), "game.mp4")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{"local file", Input{LocalPath: existing}, false},
		{"url", Input{URL: "https://example.com/v.mp4"}, false},
		{"neither", Input{}, true},
		{"both", Input{LocalPath: existing, URL: "https://example.com"}, true},
		{"missing local", Input{LocalPath: filepath.Join(t.TempDir(), "nope.mp4")}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRunName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Input
		want string
	}{
		{Input{LocalPath: "/tmp/My Game (final).mp4"}, "My-Game--final"},
		{Input{URL: "https://example.com/watch/clip.webm"}, "clip"},
		{Input{LocalPath: "/tmp/???.mp4"}, "input"},
		{Input{LocalPath: "/videos/week3_highlights.mp4"}, "week3_highlights"},
	}
	for _, tc := range tests {
		if got := runName(tc.in); got != tc.want {
			t.Fatalf("runName(%+v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
