package console

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	spinnerInterval = 80 * time.Millisecond

	defaultWidth = 80
	minBarWidth  = 10
	maxBarWidth  = 40
)

// Status shows text with a dots spinner while fn runs, and returns fn's
// error. Without a terminal nothing is shown.
func (c *Console) Status(text string, fn func() error) error {
	if !c.tty {
		return fn()
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			c.out.ClearLine()
			fmt.Fprintf(c.out, "\r%s %s", c.style(c.out, ColorEmph, spinnerFrames[i%len(spinnerFrames)]), text)
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	c.out.HideCursor()
	err := fn()
	close(done)
	wg.Wait()
	c.out.ClearLine()
	fmt.Fprint(c.out, "\r")
	c.out.ShowCursor()
	return err
}

// Width returns the terminal width of the console output, or 80.
func (c *Console) Width() int {
	f, ok := c.w.(*os.File)
	if !ok || !c.tty {
		return defaultWidth
	}
	_, cols, err := pty.Getsize(f)
	if err != nil || cols <= 0 {
		return defaultWidth
	}
	return cols
}

// Progress draws a label, a bar and a done/total count.
type Progress struct {
	c     *Console
	label string
	total int
	done  int
	width int
	mu    sync.Mutex
}

// Progress starts a progress bar of total steps.
func (c *Console) Progress(label string, total int) *Progress {
	p := &Progress{c: c, label: label, total: total}
	p.width = barWidth(c.Width(), label, total)
	if c.tty {
		p.draw()
	}
	return p
}

// barWidth fits the bar between the label and the count.
func barWidth(cols int, label string, total int) int {
	count := len(fmt.Sprintf("%d/%d", total, total))
	w := cols - len(label) - count - 4
	if w > maxBarWidth {
		w = maxBarWidth
	}
	if w < minBarWidth {
		w = minBarWidth
	}
	return w
}

// renderBar returns a bar of width cells with done/total filled.
func renderBar(done, total, width int) string {
	filled := width
	if total > 0 {
		filled = width * done / total
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

// Add advances the bar by n steps.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	if p.done > p.total {
		p.done = p.total
	}
	if p.c.tty {
		p.draw()
	}
}

// Done completes the bar and ends its line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = p.total
	if p.c.tty {
		p.draw()
		fmt.Fprintln(p.c.out)
		return
	}
	fmt.Fprintf(p.c.out, "%s %d/%d\n", p.label, p.done, p.total)
}

func (p *Progress) draw() {
	bar := p.c.style(p.c.out, ColorEmph, renderBar(p.done, p.total, p.width))
	fmt.Fprintf(p.c.out, "\r%s %s %s/%s", p.label, bar, p.c.Number(p.done), p.c.Number(p.total))
}
