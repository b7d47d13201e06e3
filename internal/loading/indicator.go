package loading

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"
)

const (
	defaultTickInterval = 200 * time.Millisecond
	defaultHideDelay    = 500 * time.Millisecond
)

// RenderFunc draws the indicator at the given percentage
type RenderFunc func(percent int)

// Indicator is a pseudo-progress indicator for gateway calls. It has no
// real progress signal to draw from, so it advances by a random 5-20% on
// every tick and jumps to 100 when the work completes, lingering briefly
// so the finished state is visible.
type Indicator struct {
	interval  time.Duration
	hideDelay time.Duration
	render    RenderFunc

	mu      sync.Mutex
	percent int
	done    chan struct{}
	visible bool
}

// Option configures an Indicator
type Option func(*Indicator)

// WithInterval overrides the tick interval
func WithInterval(d time.Duration) Option {
	return func(i *Indicator) { i.interval = d }
}

// WithHideDelay overrides how long the completed state stays visible
func WithHideDelay(d time.Duration) Option {
	return func(i *Indicator) { i.hideDelay = d }
}

// WithRender overrides how the indicator is drawn
func WithRender(fn RenderFunc) Option {
	return func(i *Indicator) { i.render = fn }
}

// New creates an indicator writing to w with the default 200ms tick
func New(w io.Writer, opts ...Option) *Indicator {
	ind := &Indicator{
		interval:  defaultTickInterval,
		hideDelay: defaultHideDelay,
		render: func(percent int) {
			fmt.Fprintf(w, "\rLoading... %d%%", percent)
		},
	}
	for _, opt := range opts {
		opt(ind)
	}
	return ind
}

// Show starts the indicator. Showing an already-visible indicator is a no-op.
func (i *Indicator) Show() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.visible {
		return
	}
	i.visible = true
	i.percent = 0
	i.done = make(chan struct{})
	i.render(0)
	go i.tick(i.done)
}

func (i *Indicator) tick(done chan struct{}) {
	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			i.mu.Lock()
			if !i.visible {
				i.mu.Unlock()
				return
			}
			i.percent += rand.Intn(16) + 5
			if i.percent > 100 {
				i.percent = 100
			}
			i.render(i.percent)
			i.mu.Unlock()
		}
	}
}

// Complete jumps to 100%, lingers for the hide delay, then hides
func (i *Indicator) Complete() {
	i.mu.Lock()
	if !i.visible {
		i.mu.Unlock()
		return
	}
	i.percent = 100
	i.render(100)
	i.mu.Unlock()

	time.Sleep(i.hideDelay)
	i.Hide()
}

// Hide stops the indicator immediately without completing it
func (i *Indicator) Hide() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.visible {
		return
	}
	i.visible = false
	close(i.done)
}

// Percent returns the currently displayed percentage
func (i *Indicator) Percent() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.percent
}

// Visible reports whether the indicator is currently shown
func (i *Indicator) Visible() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.visible
}

// ShowFor shows the indicator for the given duration, then completes it
func (i *Indicator) ShowFor(d time.Duration) {
	i.Show()
	time.Sleep(d)
	i.Complete()
}

// ShowDuring runs fn with the indicator visible. Success completes the
// indicator to 100%; failure hides it immediately and returns the error.
func (i *Indicator) ShowDuring(fn func() error) error {
	i.Show()
	if err := fn(); err != nil {
		i.Hide()
		return err
	}
	i.Complete()
	return nil
}
