package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/api/transport"
	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/pkg/httpcontext"
	contactUC "github.com/auktia/backend/usecase/contact"
)

type ContactHandler struct {
	baseHandler
	uc *contactUC.UseCase
}

func NewContactHandler(uc *contactUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Contact endpoint liveness probe
// @Tags contact
// @Router /api/contact [get]
func (h *ContactHandler) Ping(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"service": "contact",
	})
}

// @Summary Submit a contact message
// @Tags contact
// @Router /api/contact [post]
func (h *ContactHandler) Submit(ctx *fasthttp.RequestCtx) {
	if ct := string(ctx.Request.Header.ContentType()); !strings.HasPrefix(ct, "application/json") {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "expected application/json", nil))
		return
	}

	var req transport.ContactRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	sub := contactUC.Submission{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Lang:    req.Lang,
	}
	if err := contactUC.Validate(sub); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := h.uc.Submit(stdCtx, sub)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"ok": true, "id": id})
}
