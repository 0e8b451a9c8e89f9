package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/Agrid-Dev/thermohouse/internal/weather"
)

// PacedSource releases one tick of the wrapped source per interval of wall
// clock time. It reports exhaustion when ctx is done.
type PacedSource struct {
	ctx    context.Context
	src    SampleSource
	ticker *time.Ticker
	first  bool
}

func NewPacedSource(ctx context.Context, src SampleSource, interval time.Duration) (*PacedSource, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: replay interval must be positive, got %s", ErrInvalidConfig, interval)
	}
	return &PacedSource{
		ctx:    ctx,
		src:    src,
		ticker: time.NewTicker(interval),
		first:  true,
	}, nil
}

func (p *PacedSource) Next() (weather.Tick, bool) {
	if p.first {
		p.first = false
	} else {
		select {
		case <-p.ctx.Done():
			return weather.Tick{}, false
		case <-p.ticker.C:
		}
	}
	if p.ctx.Err() != nil {
		return weather.Tick{}, false
	}
	return p.src.Next()
}

func (p *PacedSource) Stop() { p.ticker.Stop() }
