package reel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// escapeManifestPath applies the concat demuxer's quoting rules: backslashes
// are doubled first, then colons escaped. Order matters: escaping colons
// first would double their escape's backslash.
func escapeManifestPath(p string) string {
	p = strings.ReplaceAll(p, `\`, `\\`)
	p = strings.ReplaceAll(p, `:`, `\:`)
	return p
}

// writeManifest writes one `file '<escaped absolute path>'` line per entry,
// the format the concat demuxer consumes.
func writeManifest(path string, entries []string) error {
	var b strings.Builder
	for _, entry := range entries {
		abs, err := filepath.Abs(entry)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", entry, err)
		}
		fmt.Fprintf(&b, "file '%s'\n", escapeManifestPath(abs))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
