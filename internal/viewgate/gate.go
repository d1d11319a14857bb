// Package viewgate decides whether a recipient has genuinely reviewed a
// document before the acknowledgment flow unlocks. A gate tracks one open
// viewer: the paginated strategy infers review from full page coverage, the
// opaque fallback requires a dwell threshold plus an explicit confirmation.
package viewgate

import (
	"log/slog"
	"sync"
	"time"

	"attest/internal/platform/metrics"
	id "attest/pkg/domain"
)

// State is the gate's lifecycle position.
type State string

const (
	// StateOpened means the viewer is open and strategy selection is still
	// pending on the renderer's first load report.
	StateOpened State = "opened"
	// StateTracking means a strategy is selected and review evidence is
	// accumulating.
	StateTracking State = "tracking"
	// StateConfirmed is terminal for the session; further events are
	// ignored.
	StateConfirmed State = "confirmed"
	// StateClosed means the viewer closed before confirmation; all session
	// state is discarded.
	StateClosed State = "closed"
)

const (
	// loadTimeoutSeconds bounds how long the native renderer gets to report
	// a page count before the session falls back to the opaque path.
	loadTimeoutSeconds = 5
	// opaqueDwellSeconds is the minimum dwell before ConfirmReview is
	// honored under the opaque strategy.
	opaqueDwellSeconds = 5

	tickInterval = time.Second
)

// Gate is the per-viewer review state machine. One goroutine-safe gate
// exists per open document; timers and renderer events all funnel through
// its lock.
type Gate struct {
	mu        sync.Mutex
	state     State
	session   *Session
	loadTicks int
	onViewed  func()
	ticker    Ticker
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewGate opens a gate for one viewer. onViewed fires exactly once, when the
// gate reaches confirmed. Environments whose native renderer is known to
// misbehave skip straight to the opaque strategy.
func NewGate(
	assignmentID id.AssignmentID,
	capability Capability,
	onViewed func(),
	tickers TickerFactory,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Gate {
	g := &Gate{
		state:    StateOpened,
		session:  newSession(assignmentID),
		onViewed: onViewed,
		metrics:  m,
		logger:   logger,
	}
	if !capability.NativeRenderReliable() {
		g.fallback("excluded browser: " + capability.Browser)
	}
	g.ticker = tickers(tickInterval, g.Tick)
	return g
}

// SessionID returns the gate's session ID.
func (g *Gate) SessionID() id.SessionID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.ID
}

// AssignmentID returns the assignment the gate's session belongs to.
func (g *Gate) AssignmentID() id.AssignmentID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.AssignmentID
}

// Snapshot is a point-in-time copy of the gate for transport responses.
type Snapshot struct {
	SessionID      id.SessionID
	AssignmentID   id.AssignmentID
	State          State
	Strategy       Strategy
	TotalPages     int
	PagesViewed    int
	ElapsedSeconds int
	Confirmed      bool
	// ConfirmEnabled reports whether an explicit ConfirmReview would be
	// honored right now.
	ConfirmEnabled bool
}

// Snapshot captures the current gate state.
func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		SessionID:      g.session.ID,
		AssignmentID:   g.session.AssignmentID,
		State:          g.state,
		Strategy:       g.session.Strategy,
		TotalPages:     g.session.TotalPages,
		PagesViewed:    g.session.PagesViewed(),
		ElapsedSeconds: g.session.ElapsedSeconds,
		Confirmed:      g.session.Confirmed,
		ConfirmEnabled: g.confirmEnabledLocked(),
	}
}

func (g *Gate) confirmEnabledLocked() bool {
	return g.state == StateTracking &&
		g.session.Strategy == StrategyOpaque &&
		g.session.ElapsedSeconds >= opaqueDwellSeconds
}

// Loaded handles the native renderer reporting its page count. Arriving
// after fallback or teardown it is ignored; the strategy never changes
// mid-session except through LoadError.
func (g *Gate) Loaded(pageCount int) {
	g.mu.Lock()
	if g.state != StateOpened || pageCount < 1 {
		g.mu.Unlock()
		return
	}
	g.state = StateTracking
	g.session.Strategy = StrategyPaginated
	g.session.TotalPages = pageCount

	// A one-page document is fully covered by the pre-recorded first page.
	confirmed := g.maybeConfirmCoverageLocked()
	g.mu.Unlock()
	if confirmed {
		g.fireViewed()
	}
}

// LoadError demotes the session to the opaque strategy. Elapsed time is
// preserved; the completion check restarts under opaque rules.
func (g *Gate) LoadError() {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case StateOpened:
		g.fallback("renderer load error")
	case StateTracking:
		if g.session.Strategy == StrategyPaginated {
			g.fallback("renderer error after load")
		}
	}
}

// PageChanged records that the viewer displayed a page. Once every page has
// been displayed the gate confirms; no minimum time applies under the
// paginated strategy.
func (g *Gate) PageChanged(page int) {
	g.mu.Lock()
	if g.state != StateTracking || g.session.Strategy != StrategyPaginated {
		g.mu.Unlock()
		return
	}
	g.session.recordPage(page)
	confirmed := g.maybeConfirmCoverageLocked()
	g.mu.Unlock()
	if confirmed {
		g.fireViewed()
	}
}

// ConfirmReview handles the explicit confirmation action. Under the opaque
// strategy it is honored only once the dwell threshold has elapsed; before
// that it is a no-op, never an error. Returns whether the gate is confirmed
// after the call.
func (g *Gate) ConfirmReview() bool {
	g.mu.Lock()
	if g.state == StateConfirmed {
		g.mu.Unlock()
		return true
	}
	if !g.confirmEnabledLocked() {
		g.mu.Unlock()
		return false
	}
	g.confirmLocked()
	g.mu.Unlock()
	g.fireViewed()
	return true
}

// Tick advances the dwell counter. While strategy selection is pending it
// also counts down the renderer load timeout.
func (g *Gate) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case StateOpened:
		g.session.ElapsedSeconds++
		g.loadTicks++
		if g.loadTicks >= loadTimeoutSeconds {
			g.fallback("renderer load timeout")
		}
	case StateTracking:
		g.session.ElapsedSeconds++
	}
}

// Close tears the session down. All state is discarded; reopening the viewer
// starts a fresh session with no credit for prior viewing.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateClosed {
		return
	}
	if g.state != StateConfirmed {
		g.state = StateClosed
	}
	g.stopTickerLocked()
}

// Confirmed reports whether the session reached confirmed.
func (g *Gate) Confirmed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StateConfirmed
}

// fallback selects the opaque strategy, preserving elapsed time.
func (g *Gate) fallback(reason string) {
	if g.session.Strategy == StrategyOpaque && g.state == StateTracking {
		return
	}
	g.state = StateTracking
	g.session.Strategy = StrategyOpaque
	g.session.TotalPages = 0
	if g.metrics != nil {
		g.metrics.RenderFallbacks.Inc()
	}
	if g.logger != nil {
		g.logger.Info("view session demoted to opaque renderer",
			"session_id", g.session.ID.String(),
			"assignment_id", g.session.AssignmentID.String(),
			"reason", reason,
		)
	}
}

func (g *Gate) maybeConfirmCoverageLocked() bool {
	if !g.session.fullCoverage() {
		return false
	}
	g.confirmLocked()
	return true
}

// confirmLocked transitions to the terminal confirmed state and cancels the
// ticker so no further dwell accrues.
func (g *Gate) confirmLocked() {
	g.state = StateConfirmed
	g.session.Confirmed = true
	g.stopTickerLocked()
	if g.metrics != nil {
		g.metrics.SessionsConfirmed.WithLabelValues(string(g.session.Strategy)).Inc()
	}
}

// fireViewed runs the confirmation callback outside the lock. confirmLocked
// is reachable at most once per gate, so the callback fires at most once.
func (g *Gate) fireViewed() {
	if g.onViewed != nil {
		g.onViewed()
	}
}

func (g *Gate) stopTickerLocked() {
	if g.ticker != nil {
		g.ticker.Stop()
	}
}
