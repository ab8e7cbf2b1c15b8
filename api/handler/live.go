package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/api/transport"
	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/pkg/httpcontext"
	liveUC "github.com/auktia/backend/usecase/live"
)

type LiveHandler struct {
	baseHandler
	uc *liveUC.UseCase
}

func NewLiveHandler(uc *liveUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List visible live events
// @Tags live
// @Router /api/live [get]
func (h *LiveHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.uc.List(stdCtx))
}

// @Summary Read one live event
// @Tags live
// @Router /api/live/{id} [get]
func (h *LiveHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.Get(stdCtx, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Create a live event
// @Tags live
// @Router /api/live [post]
func (h *LiveHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.LiveCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || (req.TitleSV == "" && req.TitleEN == "") {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	ev, err := h.uc.Create(stdCtx, domain.Localized{SV: req.TitleSV, EN: req.TitleEN}, req.StartISO, req.LinkedAuction)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, ev)
}

// @Summary Delete a live event
// @Tags live
// @Router /api/live/{id} [delete]
func (h *LiveHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, pathID(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"deleted": true})
}

// @Summary Start a live run
// @Tags live
// @Router /api/live/{id}/start [post]
func (h *LiveHandler) Start(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, h.uc.Start)
}

// @Summary Stop a live run
// @Tags live
// @Router /api/live/{id}/stop [post]
func (h *LiveHandler) Stop(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, h.uc.Stop)
}

// @Summary Reveal the next item
// @Tags live
// @Router /api/live/{id}/reveal [post]
func (h *LiveHandler) Reveal(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, h.uc.RevealNext)
}

// @Summary Mark the current item sold
// @Tags live
// @Router /api/live/{id}/sold [post]
func (h *LiveHandler) Sold(ctx *fasthttp.RequestCtx) {
	var req transport.MarkSoldRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.MarkSold(stdCtx, pathID(ctx), req.FinalPrice)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Submit post-event feedback
// @Tags live
// @Router /api/live/{id}/feedback [post]
func (h *LiveHandler) Feedback(ctx *fasthttp.RequestCtx) {
	var req transport.FeedbackRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Message == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sub := domain.FeedbackSubmission{
		Name:        req.Name,
		Message:     req.Message,
		Rating:      req.Rating,
		SubmittedAt: time.Now().UnixMilli(),
	}
	if err := h.uc.SubmitFeedback(stdCtx, pathID(ctx), sub); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"accepted": true})
}

func (h *LiveHandler) transition(ctx *fasthttp.RequestCtx, op func(ctx context.Context, id string) (*liveUC.View, error)) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := op(stdCtx, pathID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

func pathID(ctx *fasthttp.RequestCtx) string {
	if v, ok := ctx.UserValue("id").(string); ok {
		return v
	}
	return ""
}
