// Package health serves liveness and readiness probes on the telemetry
// listener.
//
//   - /healthz reports liveness; a process that can answer HTTP is alive.
//   - /readyz reports readiness: the assistant must have finished startup
//     (audio device selected, providers wired) and every registered probe
//     must pass.
//
// Responses are JSON with a top-level "status" of "ok" or "fail" and a
// "probes" map with per-probe results.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// probeTimeout bounds how long a single readiness probe may run.
const probeTimeout = 5 * time.Second

// Probe checks one dependency of the assistant. It must honour ctx.
type Probe func(ctx context.Context) error

// Handler answers /healthz and /readyz. Probes can be added during startup;
// readiness additionally requires [Handler.SetReady] to have been called,
// so the endpoint reports not-ready while the pipeline is still wiring up.
type Handler struct {
	ready atomic.Bool

	mu     sync.RWMutex
	probes []namedProbe
}

type namedProbe struct {
	name  string
	probe Probe
}

type response struct {
	Status string            `json:"status"`
	Probes map[string]string `json:"probes,omitempty"`
}

// NewHandler creates an empty, not-yet-ready [Handler].
func NewHandler() *Handler {
	return &Handler{}
}

// AddProbe registers a named readiness probe. Probes run sequentially in
// registration order on every /readyz request.
func (h *Handler) AddProbe(name string, p Probe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes = append(h.probes, namedProbe{name: name, probe: p})
}

// SetReady flips the startup gate. /readyz can only return 200 afterwards.
func (h *Handler) SetReady() {
	h.ready.Store(true)
}

// Register adds the probe routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /readyz", h.readyz)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, response{
			Status: "fail",
			Probes: map[string]string{"startup": "fail: still starting"},
		})
		return
	}

	h.mu.RLock()
	probes := make([]namedProbe, len(h.probes))
	copy(probes, h.probes)
	h.mu.RUnlock()

	results := make(map[string]string, len(probes))
	status := http.StatusOK
	res := response{Status: "ok", Probes: results}

	for _, p := range probes {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := p.probe(ctx)
		cancel()

		if err != nil {
			results[p.name] = "fail: " + err.Error()
			res.Status = "fail"
			status = http.StatusServiceUnavailable
			continue
		}
		results[p.name] = "ok"
	}

	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
