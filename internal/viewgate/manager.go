package viewgate

import (
	"log/slog"
	"sync"

	"attest/internal/platform/metrics"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

// Manager owns the live gates, keyed by session ID. One gate per open
// viewer; closing the viewer removes the gate.
type Manager struct {
	mu      sync.Mutex
	gates   map[id.SessionID]*Gate
	tickers TickerFactory
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewManager constructs a gate manager. Pass RealTicker outside tests.
func NewManager(tickers TickerFactory, m *metrics.Metrics, logger *slog.Logger) *Manager {
	return &Manager{
		gates:   make(map[id.SessionID]*Gate),
		tickers: tickers,
		metrics: m,
		logger:  logger,
	}
}

// Open creates a gate for a freshly opened viewer and registers it.
func (m *Manager) Open(assignmentID id.AssignmentID, capability Capability, onViewed func()) *Gate {
	gate := NewGate(assignmentID, capability, onViewed, m.tickers, m.metrics, m.logger)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates[gate.SessionID()] = gate
	return gate
}

// Get returns the gate for a session.
func (m *Manager) Get(sessionID id.SessionID) (*Gate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate, ok := m.gates[sessionID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "view session not found")
	}
	return gate, nil
}

// Close tears down a session and forgets it. Unknown sessions are a no-op so
// viewer close beacons can fire twice safely.
func (m *Manager) Close(sessionID id.SessionID) {
	m.mu.Lock()
	gate, ok := m.gates[sessionID]
	if ok {
		delete(m.gates, sessionID)
	}
	m.mu.Unlock()
	if ok {
		gate.Close()
	}
}

// CloseForAssignment tears down every live session belonging to an
// assignment. Used when the assignment resolves through a path that carries
// no session ID, such as a decline.
func (m *Manager) CloseForAssignment(assignmentID id.AssignmentID) {
	m.mu.Lock()
	var closing []*Gate
	for sessionID, gate := range m.gates {
		if gate.AssignmentID() == assignmentID {
			delete(m.gates, sessionID)
			closing = append(closing, gate)
		}
	}
	m.mu.Unlock()
	for _, gate := range closing {
		gate.Close()
	}
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.gates)
}
