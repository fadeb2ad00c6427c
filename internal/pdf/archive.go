package pdf

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// CreateZip bundles previously produced output files into one archive.
// Entries carry only the file's base name; paths that no longer exist are
// skipped, the archive is produced regardless.
func (p *Processor) CreateZip(paths []string) (string, error) {
	name := fmt.Sprintf("download_%s.zip", strings.ReplaceAll(uuid.New().String(), "-", ""))
	out := p.out.OutputPath(name)

	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	archive := zip.NewWriter(f)

	for _, path := range paths {
		src, err := os.Open(path)
		if err != nil {
			zlog.Logger.Warn().Str("file", path).Msg("skipping missing file for archive")
			continue
		}

		entry, err := archive.Create(filepath.Base(path))
		if err != nil {
			src.Close()
			return "", fmt.Errorf("failed to add %s to archive: %w", path, err)
		}
		if _, err := io.Copy(entry, src); err != nil {
			src.Close()
			return "", fmt.Errorf("failed to write %s into archive: %w", path, err)
		}
		src.Close()
	}

	if err := archive.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}

	return out, nil
}
