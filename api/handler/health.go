package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/api/transport"
	"github.com/auktia/backend/internal/infrastructure/monitor"
	"github.com/auktia/backend/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check reports dependency health. The document store is the only hard
// dependency; redis and postgres being down degrades ratings and the
// contact archive but the site keeps serving.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"services": map[string]interface{}{
			"store":      status.KV,
			"redis":      status.Redis,
			"postgresql": status.PostgreSQL,
			"ratings": map[string]interface{}{
				"aggregator_online": status.Redis,
				"pending_votes":     status.PendingVotes,
			},
		},
	}

	if status.KV {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "document store offline", payload))
}
