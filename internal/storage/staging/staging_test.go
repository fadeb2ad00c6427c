package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "uploads", "outputs")
	require.NoError(t, err)
	return s
}

func TestStageInput(t *testing.T) {
	s := newTestStore(t)

	first, err := s.StageInput("report.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	second, err := s.StageInput("report.pdf", strings.NewReader("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "identical upload names must not collide")
	assert.True(t, strings.HasSuffix(first, "_report.pdf"))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestStageInputStripsDirectories(t *testing.T) {
	s := newTestStore(t)

	path, err := s.StageInput("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, s.inboundDir, filepath.Dir(path))
}

func TestRelAndResolveRoundTrip(t *testing.T) {
	s := newTestStore(t)

	staged, err := s.StageInput("doc.pdf", strings.NewReader("content"))
	require.NoError(t, err)

	ref := s.Rel(staged)
	assert.False(t, filepath.IsAbs(ref))

	resolved, err := s.Resolve(ref)
	require.NoError(t, err)

	absStaged, err := filepath.Abs(staged)
	require.NoError(t, err)
	assert.Equal(t, absStaged, resolved)
}

func TestResolveRejectsEscapes(t *testing.T) {
	s := newTestStore(t)

	for _, ref := range []string{
		"../outside.pdf",
		"uploads/../../outside.pdf",
		"/etc/passwd",
	} {
		_, err := s.Resolve(ref)
		assert.ErrorIs(t, err, ErrNotFound, "ref %q must not resolve", ref)
	}
}

func TestResolveMissingFile(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Resolve("outputs/nope.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	// Directories are not downloadable either.
	_, err = s.Resolve("outputs")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweepDeletesOnlyOldFiles(t *testing.T) {
	s := newTestStore(t)

	old, err := s.StageInput("old.pdf", strings.NewReader("old"))
	require.NoError(t, err)
	fresh, err := s.StageInput("fresh.pdf", strings.NewReader("fresh"))
	require.NoError(t, err)

	keep := filepath.Join(s.outboundDir, keepFile)
	require.NoError(t, os.WriteFile(keep, nil, 0o644))

	past := time.Now().Add(-25 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(keep, past, past))

	deleted := s.Sweep(24 * time.Hour)
	assert.Equal(t, 1, deleted)

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, keep, "placeholder survives the sweep")
}

func TestSweepCoversBothZones(t *testing.T) {
	s := newTestStore(t)

	out := s.OutputFile("merged", ".pdf")
	require.NoError(t, os.WriteFile(out, []byte("pdf"), 0o644))
	in, err := s.StageInput("in.pdf", strings.NewReader("in"))
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(out, past, past))
	require.NoError(t, os.Chtimes(in, past, past))

	assert.Equal(t, 2, s.Sweep(time.Hour))
}

func TestOutputFileNaming(t *testing.T) {
	s := newTestStore(t)

	a := s.OutputFile("compressed", ".pdf")
	b := s.OutputFile("compressed", ".pdf")

	assert.NotEqual(t, a, b)
	assert.Equal(t, s.outboundDir, filepath.Dir(a))
	assert.True(t, strings.HasPrefix(filepath.Base(a), "compressed_"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
}
