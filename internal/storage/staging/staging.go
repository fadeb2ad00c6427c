// Package staging owns the ephemeral filesystem area the processing pipeline
// works in: an inbound zone for uploaded files and an outbound zone for
// produced results. Files are never renamed or reused; every staged file gets
// a fresh random identifier, which is the only coordination between
// concurrent requests.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// keepFile is a placeholder name the sweeper must never delete.
const keepFile = ".gitkeep"

// ErrNotFound is returned when a requested file does not exist inside the
// staging area, or when a supplied path points outside of it.
var ErrNotFound = errors.New("file not found")

// Store provides the staging area split into an inbound and an outbound zone.
type Store struct {
	baseDir     string
	inboundDir  string
	outboundDir string
}

// New creates a Store rooted at baseDir and makes sure both zones exist.
func New(baseDir, inbound, outbound string) (*Store, error) {
	s := &Store{
		baseDir:     baseDir,
		inboundDir:  filepath.Join(baseDir, inbound),
		outboundDir: filepath.Join(baseDir, outbound),
	}

	for _, dir := range []string{s.inboundDir, s.outboundDir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return s, nil
}

// StageInput writes an uploaded file into the inbound zone under a name made
// of a fresh identifier and the original filename, so concurrent uploads with
// identical names never collide. Returns the staged path.
func (s *Store) StageInput(filename string, src io.Reader) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.New(), filepath.Base(filename))
	dstPath := filepath.Join(s.inboundDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file %s: %w", dstPath, err)
	}

	return dstPath, nil
}

// OutputFile reserves a uniquely named path in the outbound zone for an
// operation result, e.g. OutputFile("merged", ".pdf"). The file itself is
// written by the caller.
func (s *Store) OutputFile(prefix, ext string) string {
	return filepath.Join(s.outboundDir, fmt.Sprintf("%s_%s%s", prefix, uuid.New(), ext))
}

// OutputPath returns the outbound-zone path for an explicitly derived name
// (split parts, per-page images). The caller is responsible for deriving the
// name from an already unique input name.
func (s *Store) OutputPath(name string) string {
	return filepath.Join(s.outboundDir, filepath.Base(name))
}

// RemoveInput deletes a staged input file.
func (s *Store) RemoveInput(path string) error {
	return os.Remove(path)
}

// Rel converts a staged path into the client-facing reference, relative to
// the staging base with forward slashes.
func (s *Store) Rel(path string) string {
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Resolve maps a client-facing reference back to a path inside the staging
// area. References escaping the base directory or pointing to missing files
// resolve to ErrNotFound.
func (s *Store) Resolve(ref string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(ref))

	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve staging base: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrNotFound
	}
	if abs != base && !strings.HasPrefix(abs, base+string(os.PathSeparator)) {
		return "", ErrNotFound
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}

	return abs, nil
}

// Sweep deletes files in both zones whose modification time is older than
// maxAge. Subdirectories and the placeholder file are skipped. A file that
// cannot be deleted is logged and the sweep continues. Returns the number of
// deleted files.
func (s *Store) Sweep(maxAge time.Duration) int {
	deleted := 0
	cutoff := time.Now().Add(-maxAge)

	for _, dir := range []string{s.inboundDir, s.outboundDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			zlog.Logger.Err(err).Str("dir", dir).Msg("failed to read staging directory")
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || entry.Name() == keepFile {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				zlog.Logger.Err(err).Str("file", path).Msg("failed to stat staged file")
				continue
			}

			if info.ModTime().Before(cutoff) {
				if err := os.Remove(path); err != nil {
					zlog.Logger.Err(err).Str("file", path).Msg("failed to delete staged file")
					continue
				}
				deleted++
				zlog.Logger.Info().Str("file", path).Msg("deleted old staged file")
			}
		}
	}

	return deleted
}
