package reel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// CacheIOError reports a filesystem failure during a cache validity check.
// Absent files are not errors; they simply make the cache invalid.
type CacheIOError struct {
	Path string
	Err  error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache check %s: %v", e.Path, e.Err)
}

func (e *CacheIOError) Unwrap() error { return e.Err }

// Valid reports whether the cached artifact is at least as new as the
// source-of-truth file. False when either file is absent. This is the
// timestamp fast path; FingerprintValid is the authoritative check when a
// sidecar exists.
func Valid(artifactPath, sourcePath string) (bool, error) {
	artifact, err := statFile(artifactPath)
	if err != nil || artifact == nil {
		return false, err
	}
	source, err := statFile(sourcePath)
	if err != nil || source == nil {
		return false, err
	}
	return !artifact.ModTime().Before(source.ModTime()), nil
}

func statFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &CacheIOError{Path: path, Err: err}
	}
	return info, nil
}

// Fingerprint returns the hex sha256 of the serialized highlight list.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fingerprintPath(artifactPath string) string {
	return artifactPath + ".sha256"
}

// WriteFingerprint records the source-of-truth fingerprint next to the
// artifact, making cache validity survive timestamp-preserving copies.
func WriteFingerprint(artifactPath string, sourceData []byte) error {
	return os.WriteFile(fingerprintPath(artifactPath), []byte(Fingerprint(sourceData)+"\n"), 0o644)
}

// FingerprintValid reports whether the sidecar fingerprint matches the
// current source-of-truth content. The second return is false when no
// sidecar exists, letting callers fall back to the timestamp rule for
// artifacts produced before fingerprints were recorded.
func FingerprintValid(artifactPath string, sourceData []byte) (valid, present bool) {
	b, err := os.ReadFile(fingerprintPath(artifactPath))
	if err != nil {
		return false, false
	}
	return strings.TrimSpace(string(b)) == Fingerprint(sourceData), true
}
