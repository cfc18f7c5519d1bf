package logging

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStderr runs fn while stderr is redirected to a pipe and returns
// everything written to it.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestConsoleLogger_Verbose_WhenEnabled(t *testing.T) {
	out := captureStderr(t, func() {
		NewConsoleLogger(true).Verbose("fetched %d studies", 5)
	})
	assert.Equal(t, "[VERBOSE] fetched 5 studies\n", out)
}

func TestConsoleLogger_Verbose_WhenDisabled(t *testing.T) {
	out := captureStderr(t, func() {
		NewConsoleLogger(false).Verbose("fetched %d studies", 5)
	})
	assert.Empty(t, out)
}

func TestConsoleLogger_Info(t *testing.T) {
	out := captureStderr(t, func() {
		NewConsoleLogger(false).Info("crawl complete")
	})
	assert.Equal(t, "crawl complete\n", out)
}

func TestConsoleLogger_Warn(t *testing.T) {
	out := captureStderr(t, func() {
		NewConsoleLogger(false).Warn("skipping study %s", "GSE1")
	})
	assert.Equal(t, "[WARN] skipping study GSE1\n", out)
}

func TestConsoleLogger_Error(t *testing.T) {
	out := captureStderr(t, func() {
		NewConsoleLogger(false).Error("boom: %v", io.ErrUnexpectedEOF)
	})
	assert.Equal(t, "[ERROR] boom: unexpected EOF\n", out)
}

func TestConsoleLogger_NoArgsWithPercent(t *testing.T) {
	// Messages without args must not be re-interpreted as format strings.
	out := captureStderr(t, func() {
		NewConsoleLogger(false).Info("progress 100%")
	})
	assert.Equal(t, "progress 100%\n", out)
}
