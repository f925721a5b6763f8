// Package health implements liveness and readiness probes in the Kubernetes
// style. Every registered probe runs on its own ticker goroutine and carries
// failure/success thresholds so a single hiccup never flips the reported
// state.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. Return nil when healthy.
type CheckFunc func(ctx context.Context) error

const (
	defaultFailureThreshold = 3
	defaultSuccessThreshold = 1
)

// probe is one registered check plus its runtime state.
//
// observe() runs on a single goroutine, so the consecutive counters need no
// locking. healthy and lastErr are read from HTTP handler goroutines and use
// atomics.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	failureThreshold int
	successThreshold int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	streakFail int
	streakOK   int
}

func (p *probe) healthyNow() bool {
	return p.healthy.Load()
}

func (p *probe) lastError() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// observe runs the check once and applies the thresholds. Single goroutine only.
func (p *probe) observe(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(checkCtx)
	p.lastErr.Store(&err)

	if err != nil {
		p.streakOK = 0
		p.streakFail++
		if p.streakFail >= p.failureThreshold {
			p.healthy.Store(false)
		}
		return
	}

	p.streakFail = 0
	p.streakOK++
	if p.streakOK >= p.successThreshold {
		p.healthy.Store(true)
	}
}

// Health holds a service's probe sets. The zero state is not-ready; call
// SetReady(true) after initialization completes.
type Health struct {
	ready atomic.Bool

	// mu guards the probe slices and cancel. Handlers copy the slice under
	// RLock and release before touching probe state.
	mu        sync.RWMutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New creates an empty, not-ready Health.
func New() *Health {
	return &Health{}
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	p := &probe{
		name:             name,
		timeout:          timeout,
		check:            check,
		failureThreshold: defaultFailureThreshold,
		successThreshold: defaultSuccessThreshold,
	}
	p.healthy.Store(true)
	return p
}

// AddLivenessCheck registers a probe on the /livez set. Liveness probes
// detect a wedged process: goroutine leaks, runaway GC pauses.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a probe on the /readyz set. Readiness probes
// gate traffic on dependencies: database connectivity, warmup completion.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newProbe(name, timeout, check))
}

// Start launches one goroutine per registered probe, each firing at the given
// interval. Register all probes before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, 0, len(h.liveness)+len(h.readiness))
	probes = append(probes, h.liveness...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go watchProbe(ctx, p, interval)
	}
}

func watchProbe(ctx context.Context, p *probe, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First observation runs immediately, not after one interval.
	p.observe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.observe(ctx)
		}
	}
}

// SetReady flips the manual readiness gate. Set false during graceful
// shutdown to drain traffic before the listener closes.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// currently passes.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}

	h.mu.RLock()
	probes := h.readiness
	h.mu.RUnlock()

	for _, p := range probes {
		if !p.healthyNow() {
			return false
		}
	}
	return true
}

// Stop cancels the probe goroutines. Safe to call repeatedly.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} when every liveness probe
// passes, 503 with per-probe messages otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	probes := make([]*probe, len(h.liveness))
	copy(probes, h.liveness)
	h.mu.RUnlock()

	writeStatus(w, failuresOf(probes))
}

// ReadyEndpoint serves /readyz: 200 only when the manual gate is open and all
// readiness probes pass.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready.Load()

	h.mu.RLock()
	probes := make([]*probe, len(h.readiness))
	copy(probes, h.readiness)
	h.mu.RUnlock()

	failures := failuresOf(probes)
	if !ready {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// failuresOf reports each unhealthy probe with its stored last error. Probes
// are never re-executed on the request path.
func failuresOf(probes []*probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		if p.healthyNow() {
			continue
		}
		if err := p.lastError(); err != nil {
			failures[p.name] = err.Error()
		} else {
			failures[p.name] = "check is unhealthy"
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
