package muting

import "time"

// DefaultEchoWindow is how long after a local mute change server updates
// are treated as echoes of it.
const DefaultEchoWindow = time.Second

// EchoGuard suppresses muted-topic updates that echo a change made locally
// moments earlier. It is a best-effort heuristic, not a lock.
type EchoGuard struct {
	window    time.Duration
	lastLocal time.Time
}

// NewEchoGuard returns a guard; a non-positive window uses DefaultEchoWindow.
func NewEchoGuard(window time.Duration) *EchoGuard {
	if window <= 0 {
		window = DefaultEchoWindow
	}
	return &EchoGuard{window: window}
}

// MarkLocalUpdate records that the user changed a mute locally at t.
func (g *EchoGuard) MarkLocalUpdate(t time.Time) {
	if t.After(g.lastLocal) {
		g.lastLocal = t
	}
}

// ShouldApply reports whether a server update arriving at t should be
// applied.
func (g *EchoGuard) ShouldApply(arrival time.Time) bool {
	if g.lastLocal.IsZero() {
		return true
	}
	return !arrival.Before(g.lastLocal.Add(g.window))
}

func (g *EchoGuard) Window() time.Duration {
	return g.window
}
