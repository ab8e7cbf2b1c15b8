package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/api/transport"
	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/pkg/httpcontext"
	newsletterUC "github.com/auktia/backend/usecase/newsletter"
)

type NewsletterHandler struct {
	baseHandler
	uc *newsletterUC.UseCase
}

func NewNewsletterHandler(uc *newsletterUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Subscribe to the newsletter
// @Tags newsletter
// @Router /api/newsletter [post]
func (h *NewsletterHandler) Subscribe(ctx *fasthttp.RequestCtx) {
	var req transport.NewsletterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	added, err := h.uc.Subscribe(stdCtx, req.Email, req.Lang)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"subscribed": true, "new": added})
}

// @Summary List subscribers
// @Tags newsletter
// @Router /api/admin/newsletter [get]
func (h *NewsletterHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subs, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, subs)
}
