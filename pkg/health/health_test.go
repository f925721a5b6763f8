package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingCheck() CheckFunc {
	return func(_ context.Context) error {
		return nil
	}
}

func failingCheck(msg string) CheckFunc {
	return func(_ context.Context) error {
		return errors.New(msg)
	}
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	h := New()
	h.AddLivenessCheck("check1", time.Second, passingCheck())
	h.AddLivenessCheck("check2", time.Second, passingCheck())

	// Probes start healthy before any observation.
	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decodeStatus(t, w).Status)
}

func TestLiveEndpoint_FailingCheck(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, failingCheck("connection refused"))

	// Drive the probe past the failure threshold of 3.
	ctx := context.Background()
	for range 3 {
		h.liveness[0].observe(ctx)
	}

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeStatus(t, w)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestLiveEndpoint_FailureBelowThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("flaky", time.Second, failingCheck("temporary"))

	// Two failures stay under the threshold of 3.
	ctx := context.Background()
	h.liveness[0].observe(ctx)
	h.liveness[0].observe(ctx)

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyEndpoint_ReadyAndPassing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passingCheck())
	h.SetReady(true)

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeStatus(t, w).Status)
}

func TestReadyEndpoint_NotReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passingCheck())
	// SetReady(true) never called; the manual gate stays closed.

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeStatus(t, w)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Contains(t, body.Checks, "_readiness")
}

func TestReadyEndpoint_SetReadyFalse(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passingCheck())
	h.SetReady(true)

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	h.SetReady(false)

	w2 := httptest.NewRecorder()
	h.ReadyEndpoint(w2, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w2.Code)
}

func TestReadyEndpoint_MultipleChecksOneFailing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passingCheck())
	h.AddReadinessCheck("cache", time.Second, failingCheck("cache miss"))
	h.SetReady(true)

	ctx := context.Background()
	for range 3 {
		h.readiness[1].observe(ctx)
	}

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeStatus(t, w)
	assert.Contains(t, body.Checks, "cache")
	assert.NotContains(t, body.Checks, "postgres")
}

func TestIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passingCheck())

	assert.False(t, h.IsReady(), "not ready before SetReady")

	h.SetReady(true)
	assert.True(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestStopIsIdempotent(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutine", time.Second, passingCheck())

	h.Start(context.Background(), 100*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestEndpoints_NoProbes(t *testing.T) {
	h := New()
	h.SetReady(true)

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w2 := httptest.NewRecorder()
	h.ReadyEndpoint(w2, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestProbeRecovery(t *testing.T) {
	// Once past the failure threshold, a single success recovers the probe
	// (successThreshold defaults to 1).
	failing := true
	h := New()
	h.AddLivenessCheck("flaky", time.Second, func(_ context.Context) error {
		if failing {
			return errors.New("down")
		}
		return nil
	})
	p := h.liveness[0]
	ctx := context.Background()

	for range 3 {
		p.observe(ctx)
	}
	assert.False(t, p.healthyNow())

	failing = false
	p.observe(ctx)
	assert.True(t, p.healthyNow())
}

func TestProbeLastErrorStored(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, failingCheck("timeout"))
	p := h.liveness[0]

	assert.Nil(t, p.lastError())

	p.observe(context.Background())
	assert.EqualError(t, p.lastError(), "timeout")
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.AddLivenessCheck("concurrent", time.Second, failingCheck("err"))
	h.AddReadinessCheck("concurrent", time.Second, passingCheck())
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.Start(ctx, 10*time.Millisecond)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				h.IsReady()

				w := httptest.NewRecorder()
				h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

				w = httptest.NewRecorder()
				h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
