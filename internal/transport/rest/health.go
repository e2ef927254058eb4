package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/folio/internal/domain"
)

const probeTimeout = 3 * time.Second

type storePinger interface {
	Ping(ctx context.Context) error
}

type platformReader interface {
	GetPlatform(ctx context.Context) (*domain.PlatformAccount, error)
}

// HealthHandler serves the liveness, readiness and health probes.
type HealthHandler struct {
	store    storePinger
	platform platformReader
	version  string
}

// NewHealthHandler creates a HealthHandler. platform may be nil, in which
// case /health reports only the store.
func NewHealthHandler(store storePinger, platform platformReader, version string) *HealthHandler {
	return &HealthHandler{store: store, platform: platform, version: version}
}

type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of one probed component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Live always answers 200.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready answers 200 while the store is reachable and 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Timestamp: time.Now()}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "down"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// Health reports every component. An uninitialized platform is reported but
// does not make the service unhealthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:     "ok",
		Version:    h.version,
		Components: make(map[string]CompStatus, 2),
	}

	store := h.probeStore(ctx)
	resp.Components["store"] = store
	if store.Status != "ok" {
		resp.Status = "down"
	} else if h.platform != nil {
		resp.Components["platform"] = h.probePlatform(ctx)
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	resp.Timestamp = time.Now()
	writeJSON(w, status, resp)
}

func (h *HealthHandler) probeStore(ctx context.Context) CompStatus {
	start := time.Now()
	if err := h.store.Ping(ctx); err != nil {
		return CompStatus{Status: "down"}
	}
	return CompStatus{Status: "ok", Latency: time.Since(start).String()}
}

func (h *HealthHandler) probePlatform(ctx context.Context) CompStatus {
	acct, err := h.platform.GetPlatform(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return CompStatus{Status: "uninitialized"}
	case err != nil:
		return CompStatus{Status: "unknown"}
	}
	return CompStatus{Status: "ok", Detail: "listings=" + strconv.FormatUint(acct.Counter, 10)}
}
