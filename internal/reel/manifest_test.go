package reel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEscapeManifestPath(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{`C:\videos\clip.mp4`, `C\:\\videos\\clip.mp4`},
		{`/plain/path.mp4`, `/plain/path.mp4`},
		{`/odd:name/clip.mp4`, `/odd\:name/clip.mp4`},
		{`back\slash`, `back\\slash`},
	}
	for _, c := range cases {
		if got := escapeManifestPath(c.in); got != c.want {
			t.Fatalf("escapeManifestPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWriteManifest(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, manifestName)

	entries := []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.mp4"),
	}
	if err := writeManifest(out, entries); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(b))
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "file '") || !strings.HasSuffix(line, "'") {
			t.Fatalf("line %d not in concat format: %q", i, line)
		}
	}
	if !strings.Contains(lines[0], "a.mp4") || !strings.Contains(lines[1], "b.mp4") {
		t.Fatalf("entry order not preserved: %v", lines)
	}
}
