package engine

import (
	"context"
	"time"
)

// Pacer decides when the next tick may run. It never changes what a tick
// computes.
type Pacer interface {
	Wait(ctx context.Context) error
	Stop()
}

// BatchPacer runs ticks back to back.
type BatchPacer struct{}

func (BatchPacer) Wait(ctx context.Context) error { return ctx.Err() }

func (BatchPacer) Stop() {}

// TickerPacer releases one tick per period of a real-time clock.
type TickerPacer struct {
	ticker *time.Ticker
}

func NewTickerPacer(fps float64) *TickerPacer {
	period := time.Duration(float64(time.Second) / fps)
	if period <= 0 {
		period = time.Millisecond
	}
	return &TickerPacer{ticker: time.NewTicker(period)}
}

func (p *TickerPacer) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C:
		return nil
	}
}

func (p *TickerPacer) Stop() { p.ticker.Stop() }
