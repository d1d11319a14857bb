package viewgate

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"attest/internal/platform/metrics"
	id "attest/pkg/domain"
)

// manualTicker lets tests drive dwell ticks by calling gate.Tick directly
// and observe teardown.
type manualTicker struct {
	stopped bool
}

func (t *manualTicker) Stop() { t.stopped = true }

type GateSuite struct {
	suite.Suite
	metrics *metrics.Metrics
	logger  *slog.Logger
	tickers []*manualTicker
}

func (s *GateSuite) SetupTest() {
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.tickers = nil
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) tickerFactory() TickerFactory {
	return func(_ time.Duration, _ func()) Ticker {
		t := &manualTicker{}
		s.tickers = append(s.tickers, t)
		return t
	}
}

func (s *GateSuite) newGate(capability Capability, onViewed func()) *Gate {
	return NewGate(id.NewAssignmentID(), capability, onViewed, s.tickerFactory(), s.metrics, s.logger)
}

func chrome() Capability { return Capability{Engine: "Blink", Browser: "Chrome"} }
func safari() Capability { return Capability{Engine: "AppleWebKit", Browser: "Safari"} }
func tick(g *Gate, n int) {
	for i := 0; i < n; i++ {
		g.Tick()
	}
}

func (s *GateSuite) TestPaginatedCoverage() {
	s.Run("visiting every page confirms regardless of elapsed time", func() {
		viewed := 0
		g := s.newGate(chrome(), func() { viewed++ })
		g.Loaded(3)
		s.False(g.Confirmed())

		g.PageChanged(3)
		g.PageChanged(2)
		s.True(g.Confirmed(), "pages {1,2,3} in any order complete coverage")
		s.Equal(1, viewed)
		s.Equal(0, g.Snapshot().ElapsedSeconds)
	})

	s.Run("partial coverage never confirms", func() {
		g := s.newGate(chrome(), nil)
		g.Loaded(3)
		g.PageChanged(2)
		tick(g, 120)
		s.False(g.Confirmed(), "two of three pages is not reviewed, however long it sits")
	})

	s.Run("revisits do not double count", func() {
		g := s.newGate(chrome(), nil)
		g.Loaded(3)
		g.PageChanged(2)
		g.PageChanged(2)
		g.PageChanged(1)
		s.Equal(2, g.Snapshot().PagesViewed)
		s.False(g.Confirmed())
	})

	s.Run("single page document confirms on load", func() {
		viewed := 0
		g := s.newGate(chrome(), func() { viewed++ })
		g.Loaded(1)
		s.True(g.Confirmed())
		s.Equal(1, viewed)
	})

	s.Run("out of range page indices are ignored", func() {
		g := s.newGate(chrome(), nil)
		g.Loaded(2)
		g.PageChanged(0)
		g.PageChanged(7)
		s.Equal(1, g.Snapshot().PagesViewed)
	})

	s.Run("explicit confirm is a no-op under paginated tracking", func() {
		g := s.newGate(chrome(), nil)
		g.Loaded(3)
		tick(g, 60)
		s.False(g.ConfirmReview(), "coverage is the only path to confirmed")
	})
}

func (s *GateSuite) TestOpaqueDwell() {
	s.Run("confirm is a no-op before the dwell threshold", func() {
		viewed := 0
		g := s.newGate(safari(), func() { viewed++ })
		s.Equal(StrategyOpaque, g.Snapshot().Strategy)

		tick(g, 4)
		s.False(g.ConfirmReview())
		s.False(g.Confirmed())
		s.Zero(viewed)
	})

	s.Run("threshold enables confirm but never auto-fires", func() {
		viewed := 0
		g := s.newGate(safari(), func() { viewed++ })
		tick(g, 300)
		s.False(g.Confirmed(), "time elapsing alone never confirms")
		s.Zero(viewed)

		s.True(g.ConfirmReview())
		s.True(g.Confirmed())
		s.Equal(1, viewed)
	})

	s.Run("confirm is idempotent and the callback fires once", func() {
		viewed := 0
		g := s.newGate(safari(), func() { viewed++ })
		tick(g, 5)
		s.True(g.ConfirmReview())
		s.True(g.ConfirmReview())
		g.PageChanged(2)
		g.Tick()
		s.Equal(1, viewed)
	})
}

func (s *GateSuite) TestStrategySelection() {
	s.Run("excluded desktop browser goes straight to opaque", func() {
		g := s.newGate(safari(), nil)
		snap := g.Snapshot()
		s.Equal(StrategyOpaque, snap.Strategy)
		s.Equal(StateTracking, snap.State)
		s.Equal(1.0, promtest.ToFloat64(s.metrics.RenderFallbacks))
	})

	s.Run("mobile safari keeps the native renderer", func() {
		capability := Capability{Engine: "AppleWebKit", Browser: "Safari", Mobile: true}
		g := s.newGate(capability, nil)
		g.Loaded(4)
		s.Equal(StrategyPaginated, g.Snapshot().Strategy)
	})

	s.Run("load timeout falls back to opaque", func() {
		before := promtest.ToFloat64(s.metrics.RenderFallbacks)
		g := s.newGate(chrome(), nil)
		tick(g, 5)
		snap := g.Snapshot()
		s.Equal(StrategyOpaque, snap.Strategy)
		s.Equal(5, snap.ElapsedSeconds, "waiting for the renderer still counts as dwell")
		s.Equal(before+1, promtest.ToFloat64(s.metrics.RenderFallbacks))
	})

	s.Run("late load report after fallback is ignored", func() {
		g := s.newGate(chrome(), nil)
		tick(g, 5)
		g.Loaded(3)
		s.Equal(StrategyOpaque, g.Snapshot().Strategy)
	})

	s.Run("load error after selection demotes but preserves dwell", func() {
		g := s.newGate(chrome(), nil)
		g.Loaded(3)
		tick(g, 3)
		g.LoadError()

		snap := g.Snapshot()
		s.Equal(StrategyOpaque, snap.Strategy)
		s.Equal(3, snap.ElapsedSeconds)
		s.False(g.ConfirmReview(), "dwell threshold not yet met after demotion")

		tick(g, 2)
		s.True(g.ConfirmReview())
	})
}

func (s *GateSuite) TestTeardown() {
	s.Run("confirming stops the ticker", func() {
		g := s.newGate(chrome(), nil)
		g.Loaded(1)
		s.Require().Len(s.tickers, 1)
		s.True(s.tickers[0].stopped, "no ticks after confirmed")
	})

	s.Run("closing stops the ticker and freezes state", func() {
		g := s.newGate(safari(), nil)
		tick(g, 3)
		g.Close()
		s.True(s.tickers[0].stopped)

		g.Tick()
		s.Equal(3, g.Snapshot().ElapsedSeconds, "ticks after close are ignored")
		s.False(g.ConfirmReview())
	})
}

func (s *GateSuite) TestManager() {
	manager := NewManager(s.tickerFactory(), s.metrics, s.logger)

	s.Run("reopening after close starts from scratch", func() {
		assignmentID := id.NewAssignmentID()
		first := manager.Open(assignmentID, safari(), nil)
		tick(first, 4)
		first.PageChanged(2)
		manager.Close(first.SessionID())

		_, err := manager.Get(first.SessionID())
		s.Error(err, "closed sessions are forgotten")

		second := manager.Open(assignmentID, safari(), nil)
		snap := second.Snapshot()
		s.NotEqual(first.SessionID(), snap.SessionID)
		s.Equal(0, snap.ElapsedSeconds)
		s.Equal(1, snap.PagesViewed, "page set reseeded with the first page")
		manager.Close(second.SessionID())
	})

	s.Run("closing an unknown session is a no-op", func() {
		manager.Close(id.NewSessionID())
	})

	s.Run("gates are retrievable while live", func() {
		gate := manager.Open(id.NewAssignmentID(), chrome(), nil)
		got, err := manager.Get(gate.SessionID())
		s.Require().NoError(err)
		s.Same(gate, got)
		manager.Close(gate.SessionID())
		s.Zero(manager.Len())
	})

	s.Run("closing by assignment tears down only that assignment's sessions", func() {
		declined := id.NewAssignmentID()
		mine := manager.Open(declined, chrome(), nil)
		other := manager.Open(id.NewAssignmentID(), chrome(), nil)

		manager.CloseForAssignment(declined)

		_, err := manager.Get(mine.SessionID())
		s.Error(err)
		_, err = manager.Get(other.SessionID())
		s.NoError(err)
		s.Equal(1, manager.Len())
		manager.Close(other.SessionID())
	})
}
