package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Bar renders lookup progress on a single terminal line, with running counts
// of each outcome.
type Bar struct {
	out       io.Writer
	total     int
	current   int
	counts    map[string]int
	mu        sync.Mutex
	startTime time.Time
	lastPrint time.Time
	done      bool
}

// New creates a progress bar for total lookups writing to out.
func New(total int, out io.Writer) *Bar {
	return &Bar{
		out:       out,
		total:     total,
		counts:    make(map[string]int),
		startTime: time.Now(),
		lastPrint: time.Now(),
	}
}

// Increment records one finished lookup with the given outcome.
func (b *Bar) Increment(outcome string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	b.counts[outcome]++

	// Redraw every 500ms or when complete
	now := time.Now()
	if now.Sub(b.lastPrint) > 500*time.Millisecond || b.current >= b.total {
		b.render()
		b.lastPrint = now
	}
}

// Count returns how many lookups ended with outcome.
func (b *Bar) Count(outcome string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[outcome]
}

// Finish draws the final state and ends the line. Further calls are no-ops.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.done {
		b.render()
		fmt.Fprintln(b.out)
		b.done = true
	}
}

func (b *Bar) render() {
	if b.done || b.total <= 0 {
		return
	}

	current := min(b.current, b.total)
	percentage := float64(current) / float64(b.total) * 100
	elapsed := time.Since(b.startTime)

	var eta time.Duration
	if current > 0 {
		eta = elapsed / time.Duration(current) * time.Duration(b.total-current)
	}

	const barWidth = 30
	filled := barWidth * current / b.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(b.out, "\r[%s] %d/%d (%.1f%%) ok:%d unsupported:%d failed:%d - Elapsed: %s - ETA: %s   ",
		bar,
		current,
		b.total,
		percentage,
		b.counts["ok"],
		b.counts["unsupported"],
		b.counts["failed"],
		formatDuration(elapsed),
		formatDuration(eta),
	)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
