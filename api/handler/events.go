package handler

import (
	"bufio"
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/api/transport"
	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/internal/broadcast"
	"github.com/auktia/backend/pkg/httpcontext"
	analyticsUC "github.com/auktia/backend/usecase/analytics"
	contentUC "github.com/auktia/backend/usecase/content"
)

type EventHandler struct {
	baseHandler
	uc      *analyticsUC.UseCase
	content *contentUC.UseCase
	hub     *broadcast.Hub
}

func NewEventHandler(uc *analyticsUC.UseCase, content *contentUC.UseCase, hub *broadcast.Hub, adapter *httpcontext.Adapter, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		content:     content,
		hub:         hub,
	}
}

// @Summary Record an analytics event
// @Tags events
// @Router /api/events [post]
func (h *EventHandler) Record(ctx *fasthttp.RequestCtx) {
	var req transport.EventRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	t := domain.EventType(req.Type)
	if !domain.ValidEventType(t) {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "unknown event type", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	// Admins switch recording off per type in the content document. A
	// disabled type is acknowledged but never stored, so instrumented
	// clients keep working unchanged.
	if h.content != nil && !h.content.Load(stdCtx).RecordsEventType(t) {
		h.respondSuccess(ctx, http.StatusAccepted, map[string]bool{"recorded": false})
		return
	}

	ev := h.uc.Record(stdCtx, t, req.Payload)
	h.respondSuccess(ctx, http.StatusAccepted, map[string]string{"id": ev.ID})
}

// @Summary Subscribe to change notifications
// @Tags events
// @Router /api/events/stream [get]
func (h *EventHandler) Stream(ctx *fasthttp.RequestCtx) {
	sub := h.hub.Subscribe()

	ctx.Response.Header.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.Response.Header.Set("Connection", "keep-alive")

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer sub.Close()

		keepalive := time.NewTicker(25 * time.Second)
		defer keepalive.Stop()

		// Signals carry only the topic; clients re-fetch canonical state.
		for {
			select {
			case topic, ok := <-sub.C:
				if !ok {
					return
				}
				if _, err := w.WriteString("event: " + topic + "\ndata: {}\n\n"); err != nil {
					return
				}
			case <-keepalive.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
}
