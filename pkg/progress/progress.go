// Package progress renders a single-line terminal progress bar.
package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	defaultBarWidth = 30
	labelWidth      = 20
)

// Bar draws completion fractions onto one terminal line. Not safe for
// concurrent use; the pipeline reports progress sequentially.
type Bar struct {
	w     io.Writer
	label string
	width int
	done  bool
}

// NewBar creates a bar writing to w. Labels wider than the label column are
// truncated by display width, so CJK labels do not misalign the bar.
func NewBar(w io.Writer, label string) *Bar {
	return &Bar{
		w:     w,
		label: runewidth.Truncate(label, labelWidth, "…"),
		width: defaultBarWidth,
	}
}

// Update redraws the bar for a completion fraction in [0.0, 1.0].
// Out-of-range fractions are clamped.
func (b *Bar) Update(fraction float64) {
	if b.done {
		return
	}

	if fraction < 0 {
		fraction = 0
	}

	if fraction > 1 {
		fraction = 1
	}

	filled := int(fraction * float64(b.width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", b.width-filled)

	fmt.Fprintf(b.w, "\r%s [%s] %3.0f%%", runewidth.FillRight(b.label, labelWidth), bar, fraction*100)
}

// Done completes the bar and moves to the next line. Further updates are
// ignored.
func (b *Bar) Done() {
	if b.done {
		return
	}

	b.Update(1.0)
	fmt.Fprintln(b.w)

	b.done = true
}
