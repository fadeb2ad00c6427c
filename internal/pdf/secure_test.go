package pdf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectUnlockRoundTrip(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "confidential")

	locked, err := p.Protect(input, "secret")
	require.NoError(t, err)

	unlocked, err := p.Unlock(locked, "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, pageCount(t, unlocked))
}

func TestUnlockWrongPassword(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "confidential")

	locked, err := p.Protect(input, "secret")
	require.NoError(t, err)

	_, err = p.Unlock(locked, "wrong")
	require.Error(t, err)
}

func TestUnlockUnprotectedFails(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "plain")

	_, err := p.Unlock(input, "whatever")
	require.Error(t, err)
}
