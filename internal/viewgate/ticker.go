package viewgate

import "time"

// Ticker is a running dwell-time tick source for one gate.
type Ticker interface {
	Stop()
}

// TickerFactory starts a ticker that invokes tick at the given interval until
// stopped. Injected so tests can drive ticks deterministically instead of
// waiting on the wall clock.
type TickerFactory func(interval time.Duration, tick func()) Ticker

type realTicker struct {
	done chan struct{}
}

// RealTicker backs gates with a wall-clock time.Ticker.
func RealTicker(interval time.Duration, tick func()) Ticker {
	t := &realTicker{done: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
	return t
}

func (t *realTicker) Stop() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}
