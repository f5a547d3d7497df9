package engine

import (
	"context"
	"time"
)

// Pacer enforces a minimum duration per frame. Begin marks the start of a
// frame; Wait blocks until the interval since then has elapsed.
type Pacer struct {
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	start    time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval, now: time.Now, sleep: sleepContext}
}

func (p *Pacer) Begin() {
	p.start = p.now()
}

// Wait returns early with the context error if ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	remaining := p.interval - p.now().Sub(p.start)
	if remaining <= 0 {
		return nil
	}
	return p.sleep(ctx, remaining)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FrameTimer keeps a rolling average of frame durations.
type FrameTimer struct {
	samples [120]float64
	n       int
	next    int
	sum     float64
}

// Add records one frame duration in seconds.
func (f *FrameTimer) Add(dt float64) {
	if f.n == len(f.samples) {
		f.sum -= f.samples[f.next]
	} else {
		f.n++
	}
	f.samples[f.next] = dt
	f.sum += dt
	f.next = (f.next + 1) % len(f.samples)
}

// Average is the mean of the recorded durations, 0 before the first frame.
func (f *FrameTimer) Average() float64 {
	if f.n == 0 {
		return 0
	}
	return f.sum / float64(f.n)
}
