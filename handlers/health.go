package handlers

import (
	"errors"
	"net/http"

	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
	"github.com/SyncSphere7/fou-website/storage"
)

// healthResponse reports process liveness and storage reachability.
type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// Health reports whether the process and its row store are usable.
// An unconfigured store is reported as such rather than failing the check:
// the process itself is healthy, it just cannot persist.
func (h *Handlers) Health(ctx handler.Context) handler.Response {
	status := healthResponse{Status: "ok", Storage: "ok"}

	if err := h.cfg.Store.Healthcheck(ctx); err != nil {
		if errors.Is(err, storage.ErrUnconfigured) {
			status.Storage = "unconfigured"
		} else {
			status.Status = "degraded"
			status.Storage = "unreachable"
			return response.JSONWithStatus(status, http.StatusServiceUnavailable)
		}
	}

	return response.JSON(status)
}
