package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const progressBarWidth = 30

// DownloadProgress renders a single-file download as a progress bar with
// byte counts. When the total size is unknown it degrades to a byte counter.
type DownloadProgress struct {
	bar      progress.Model
	filename string
	written  int64
	total    int64
	styles   progressStyles
}

type progressStyles struct {
	Filename lipgloss.Style
	Bytes    lipgloss.Style
	Done     lipgloss.Style
}

func defaultProgressStyles() progressStyles {
	return progressStyles{
		Filename: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Bytes:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Done:     lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}
}

// NewDownloadProgress creates a progress component with the default gradient bar.
func NewDownloadProgress() DownloadProgress {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = progressBarWidth

	return DownloadProgress{
		bar:    bar,
		styles: defaultProgressStyles(),
	}
}

// Start resets the component for a new file.
func (p *DownloadProgress) Start(filename string) {
	p.filename = filename
	p.written = 0
	p.total = 0
}

// Set updates the byte counters.
func (p *DownloadProgress) Set(written, total int64) {
	p.written = written
	p.total = total
}

// View renders the current state as a single line.
func (p DownloadProgress) View() string {
	name := p.styles.Filename.Render(p.filename)
	if p.total <= 0 {
		return fmt.Sprintf("%s %s", name, p.styles.Bytes.Render(humanBytes(p.written)))
	}

	percent := float64(p.written) / float64(p.total)
	if percent > 1 {
		percent = 1
	}
	counts := fmt.Sprintf("%s / %s", humanBytes(p.written), humanBytes(p.total))
	return fmt.Sprintf("%s %s %s", name, p.bar.ViewAs(percent), p.styles.Bytes.Render(counts))
}

// DoneView renders the completed line for a file.
func (p DownloadProgress) DoneView() string {
	return p.styles.Done.Render("✓ "+p.filename) + " " + p.styles.Bytes.Render(humanBytes(p.written))
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
