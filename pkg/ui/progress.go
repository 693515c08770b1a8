package ui

import (
	"fmt"
	"strings"
	"time"
)

// Progress is a single-line progress display for an export run. The bar is
// only redrawn when stdout is a terminal; otherwise page milestones are
// printed as plain lines.
type Progress struct {
	total     int
	completed int
	startAt   int
	startTime time.Time
	page      int
}

// NewProgress creates a progress display. total is the expected item count
// reported by the server; completed is how many items earlier runs already
// exported, taken from the first response only.
func NewProgress(total, completed int) *Progress {
	return &Progress{
		total:     total,
		completed: completed,
		startAt:   completed,
		startTime: time.Now(),
	}
}

// Advance moves the visible counter forward by n items and redraws.
func (p *Progress) Advance(n int) {
	p.completed += n
	p.page++

	if quietMode {
		return
	}
	if !IsInteractive() {
		fmt.Printf("page %d: %d/%d items\n", p.page, p.completed, p.total)
		return
	}
	p.draw()
}

// draw renders the progress line in place.
func (p *Progress) draw() {
	barWidth := 20
	filled := 0
	if p.total > 0 {
		ratio := float64(p.completed) / float64(p.total)
		if ratio > 1 {
			ratio = 1
		}
		filled = int(ratio * float64(barWidth))
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	percent := 0.0
	if p.total > 0 {
		percent = float64(p.completed) / float64(p.total) * 100
	}

	line := fmt.Sprintf("\r[%s] %3.0f%% (%d/%d) • %s",
		bar,
		percent,
		p.completed,
		p.total,
		p.eta(),
	)

	fmt.Printf("\r%s\r%s", strings.Repeat(" ", 100), line)
}

// eta estimates time remaining from the rate observed during this run.
func (p *Progress) eta() string {
	done := p.completed - p.startAt
	if done <= 0 || p.total <= 0 {
		return "calculating..."
	}

	remaining := p.total - p.completed
	if remaining <= 0 {
		return "done"
	}

	rate := float64(done) / time.Since(p.startTime).Seconds()
	if rate == 0 {
		return "calculating..."
	}

	return formatDuration(time.Duration(float64(remaining)/rate) * time.Second)
}

// Finish prints the closing summary line.
func (p *Progress) Finish(records int64, path string) {
	if quietMode {
		return
	}
	if IsInteractive() {
		fmt.Println()
	}
	fmt.Printf("%s Exported %d records to %s in %s\n",
		Green("✓"),
		records,
		path,
		formatDuration(time.Since(p.startTime)),
	)
}

// formatDuration formats a duration in a compact human-readable way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
