package monitor

import (
	"sync"
	"time"
)

// passFailureThreshold is the number of consecutive failed aggregation passes
// after which the monitor reports itself degraded.
const passFailureThreshold = 3

type healthStatus int

const (
	statusHealthy healthStatus = iota
	statusDegraded
)

func (s healthStatus) String() string {
	if s == statusDegraded {
		return "degraded"
	}
	return "healthy"
}

// passHealth tracks consecutive aggregation failures. Both loops record into
// it, so fields are protected by mu.
type passHealth struct {
	mu                sync.Mutex
	failures          int
	lastErr           string
	lastFail          time.Time
	lastEmittedStatus healthStatus
}

func newPassHealth() *passHealth {
	return &passHealth{lastEmittedStatus: statusHealthy}
}

func (h *passHealth) recordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = 0
	h.lastErr = ""
}

func (h *passHealth) recordFailure(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures++
	h.lastErr = err.Error()
	h.lastFail = time.Now()
}

// statusLocked computes health status. Caller must hold h.mu.
func (h *passHealth) statusLocked(threshold int) healthStatus {
	if h.failures >= threshold {
		return statusDegraded
	}
	return statusHealthy
}

// healthReport is the state handed to the logger when the status changes.
type healthReport struct {
	status   healthStatus
	failures int
	lastErr  string
	lastFail time.Time
}

// statusChanged returns the current state and whether its status differs
// from the last one reported, updating the reported status when it does.
func (h *passHealth) statusChanged(threshold int) (healthReport, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := healthReport{
		status:   h.statusLocked(threshold),
		failures: h.failures,
		lastErr:  h.lastErr,
		lastFail: h.lastFail,
	}
	changed := r.status != h.lastEmittedStatus
	if changed {
		h.lastEmittedStatus = r.status
	}
	return r, changed
}
