package reel

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestValid(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	artifact := filepath.Join(dir, ArtifactName)
	source := filepath.Join(dir, SourceName)
	now := time.Now()

	// Neither file exists.
	if ok, err := Valid(artifact, source); err != nil || ok {
		t.Fatalf("expected invalid for missing files, got %v, %v", ok, err)
	}

	// Artifact only.
	touch(t, artifact, now)
	if ok, _ := Valid(artifact, source); ok {
		t.Fatalf("valid without source of truth")
	}

	// Artifact newer than source: valid.
	touch(t, source, now.Add(-time.Hour))
	if ok, err := Valid(artifact, source); err != nil || !ok {
		t.Fatalf("expected valid, got %v, %v", ok, err)
	}

	// Equal mtimes: still valid (>=).
	touch(t, source, now)
	if ok, _ := Valid(artifact, source); !ok {
		t.Fatalf("equal mtimes should be valid")
	}

	// Source newer than artifact: stale.
	touch(t, source, now.Add(time.Hour))
	if ok, _ := Valid(artifact, source); ok {
		t.Fatalf("stale artifact reported valid")
	}

	// Source exists, artifact missing.
	if err := os.Remove(artifact); err != nil {
		t.Fatal(err)
	}
	if ok, _ := Valid(artifact, source); ok {
		t.Fatalf("valid without artifact")
	}
}

func TestFingerprintRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	artifact := filepath.Join(dir, ArtifactName)
	touch(t, artifact, time.Now())

	data := []byte(`[{"start_time":0,"end_time":8}]`)

	// No sidecar yet.
	if _, present := FingerprintValid(artifact, data); present {
		t.Fatalf("sidecar reported present before write")
	}

	if err := WriteFingerprint(artifact, data); err != nil {
		t.Fatal(err)
	}
	valid, present := FingerprintValid(artifact, data)
	if !present || !valid {
		t.Fatalf("fingerprint should match its own data: valid=%v present=%v", valid, present)
	}

	// Changed source content invalidates regardless of timestamps.
	valid, present = FingerprintValid(artifact, []byte(`[]`))
	if !present || valid {
		t.Fatalf("changed content should invalidate: valid=%v present=%v", valid, present)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	t.Parallel()
	a := Fingerprint([]byte("abc"))
	b := Fingerprint([]byte("abc"))
	if a != b || len(a) != 64 {
		t.Fatalf("unexpected fingerprint: %q vs %q", a, b)
	}
}
