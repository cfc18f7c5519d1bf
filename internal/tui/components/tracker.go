package components

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// renderInterval throttles in-place redraws so large downloads do not
// saturate the terminal.
const renderInterval = 100 * time.Millisecond

// DownloadTracker drives a DownloadProgress component inline on a terminal,
// redrawing the same line as bytes arrive. Its Update method matches the
// fetch.Progress callback signature.
type DownloadTracker struct {
	mu         sync.Mutex
	out        io.Writer
	model      DownloadProgress
	lastRender time.Time
	now        func() time.Time
}

// NewDownloadTracker creates a tracker writing to out, typically stderr.
func NewDownloadTracker(out io.Writer) *DownloadTracker {
	return &DownloadTracker{
		out:   out,
		model: NewDownloadProgress(),
		now:   time.Now,
	}
}

// Begin starts tracking a new file.
func (t *DownloadTracker) Begin(filename string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.model.Start(filename)
	t.lastRender = time.Time{}
	t.render()
}

// Update records download progress and redraws at most every renderInterval.
func (t *DownloadTracker) Update(written, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.model.Set(written, total)
	if t.now().Sub(t.lastRender) < renderInterval {
		return
	}
	t.render()
}

// Finish clears the in-place line and prints the completed entry.
func (t *DownloadTracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\r\033[K%s\n", t.model.DoneView())
}

func (t *DownloadTracker) render() {
	fmt.Fprintf(t.out, "\r\033[K%s", t.model.View())
	t.lastRender = t.now()
}
