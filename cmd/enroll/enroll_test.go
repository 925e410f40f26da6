package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollWritesQR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.png")
	require.NoError(t, enroll("alice", path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	im, err := png.Decode(f)
	require.NoError(t, err)
	assert.Greater(t, im.Bounds().Dx(), 0)
}

func TestEnrollBadPath(t *testing.T) {
	err := enroll("alice", filepath.Join(t.TempDir(), "missing", "qr.png"))
	assert.Error(t, err)
}
