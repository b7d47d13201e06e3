package loading

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

type percentRecorder struct {
	mu       sync.Mutex
	percents []int
}

func (r *percentRecorder) record(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.percents = append(r.percents, percent)
}

func (r *percentRecorder) all() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int{}, r.percents...)
}

func newTestIndicator(rec *percentRecorder) *Indicator {
	return New(io.Discard,
		WithInterval(time.Millisecond),
		WithHideDelay(time.Millisecond),
		WithRender(rec.record),
	)
}

func TestShowDuringSuccess(t *testing.T) {
	rec := &percentRecorder{}
	ind := newTestIndicator(rec)

	err := ind.ShowDuring(func() error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("ShowDuring() error = %v", err)
	}

	if ind.Visible() {
		t.Error("indicator should be hidden after completion")
	}

	percents := rec.all()
	if len(percents) == 0 {
		t.Fatal("expected at least one render")
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("final render = %d, want 100", percents[len(percents)-1])
	}
}

func TestShowDuringFailure(t *testing.T) {
	rec := &percentRecorder{}
	ind := newTestIndicator(rec)

	wantErr := errors.New("gateway down")
	err := ind.ShowDuring(func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("ShowDuring() error = %v, want %v", err, wantErr)
	}

	if ind.Visible() {
		t.Error("indicator should be hidden after failure")
	}
	for _, p := range rec.all() {
		if p == 100 {
			t.Error("a failed call must never render the completed state")
		}
	}
}

func TestTicksAdvanceWithinBounds(t *testing.T) {
	rec := &percentRecorder{}
	ind := newTestIndicator(rec)

	ind.Show()
	time.Sleep(20 * time.Millisecond)
	ind.Hide()

	percents := rec.all()
	if len(percents) < 2 {
		t.Fatalf("expected multiple renders, got %v", percents)
	}
	for i := 1; i < len(percents); i++ {
		delta := percents[i] - percents[i-1]
		if delta < 0 {
			t.Fatalf("progress moved backwards at render %d: %v", i, percents)
		}
		if percents[i] < 100 && (delta < 5 || delta > 20) {
			t.Errorf("tick delta = %d, want between 5 and 20", delta)
		}
		if percents[i] > 100 {
			t.Errorf("progress exceeded 100: %v", percents)
		}
	}
}

func TestShowFor(t *testing.T) {
	rec := &percentRecorder{}
	ind := newTestIndicator(rec)

	ind.ShowFor(5 * time.Millisecond)

	if ind.Visible() {
		t.Error("indicator should be hidden afterwards")
	}
	percents := rec.all()
	if len(percents) == 0 || percents[len(percents)-1] != 100 {
		t.Errorf("final render = %v, want to end at 100", percents)
	}
}

func TestShowTwiceIsNoOp(t *testing.T) {
	rec := &percentRecorder{}
	ind := newTestIndicator(rec)

	ind.Show()
	ind.Show()
	ind.Hide()

	if ind.Visible() {
		t.Error("expected hidden state")
	}
}
