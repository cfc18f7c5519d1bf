package components

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{8 * 1024 * 1024, "8.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDownloadProgress_ViewWithTotal(t *testing.T) {
	p := NewDownloadProgress()
	p.Start("GSM1_Grn.idat.gz")
	p.Set(512, 1024)

	view := p.View()
	if !strings.Contains(view, "GSM1_Grn.idat.gz") {
		t.Errorf("Expected filename in view, got: %s", view)
	}
	if !strings.Contains(view, "512 B / 1.0 KiB") {
		t.Errorf("Expected byte counts in view, got: %s", view)
	}
}

func TestDownloadProgress_ViewUnknownTotal(t *testing.T) {
	p := NewDownloadProgress()
	p.Start("sample.idat")
	p.Set(2048, 0)

	view := p.View()
	if !strings.Contains(view, "2.0 KiB") {
		t.Errorf("Expected byte counter for unknown total, got: %s", view)
	}
	if strings.Contains(view, "/") {
		t.Errorf("Expected no total fraction for unknown total, got: %s", view)
	}
}

func TestDownloadProgress_OverflowClamped(t *testing.T) {
	p := NewDownloadProgress()
	p.Start("f.idat")
	// Servers occasionally send more bytes than Content-Length claims.
	p.Set(2048, 1024)

	if view := p.View(); view == "" {
		t.Error("Expected non-empty view for overflowing progress")
	}
}

func TestDownloadTracker_FinishPrintsCompletedLine(t *testing.T) {
	var out bytes.Buffer
	tracker := NewDownloadTracker(&out)

	tracker.Begin("GSM1_Red.idat.gz")
	tracker.Update(1024, 1024)
	tracker.Finish()

	got := out.String()
	if !strings.Contains(got, "GSM1_Red.idat.gz") {
		t.Errorf("Expected filename in output, got: %s", got)
	}
	if !strings.Contains(got, "✓") {
		t.Errorf("Expected completion marker, got: %s", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("Expected completed line to end with newline")
	}
}

func TestDownloadTracker_ThrottlesRedraws(t *testing.T) {
	var out bytes.Buffer
	tracker := NewDownloadTracker(&out)

	clock := time.Unix(0, 0)
	tracker.now = func() time.Time { return clock }

	tracker.Begin("f.idat")
	drawn := out.Len()

	// Within the interval: no redraw.
	clock = clock.Add(10 * time.Millisecond)
	tracker.Update(100, 1000)
	if out.Len() != drawn {
		t.Error("Expected update within render interval to be skipped")
	}

	// Past the interval: redraw happens.
	clock = clock.Add(renderInterval)
	tracker.Update(200, 1000)
	if out.Len() == drawn {
		t.Error("Expected update past render interval to redraw")
	}
}
