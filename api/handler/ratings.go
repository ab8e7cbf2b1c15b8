package handler

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/api/transport"
	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/pkg/httpcontext"
	ratingsUC "github.com/auktia/backend/usecase/ratings"
)

type RatingHandler struct {
	baseHandler
	uc *ratingsUC.UseCase
}

func NewRatingHandler(uc *ratingsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *RatingHandler {
	return &RatingHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Read a rating aggregate
// @Tags ratings
// @Router /api/ratings [get]
func (h *RatingHandler) Get(ctx *fasthttp.RequestCtx) {
	target, err := domain.ParseTarget(
		string(ctx.QueryArgs().Peek("type")),
		string(ctx.QueryArgs().Peek("id")),
	)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.GetAggregate(stdCtx, target)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Cast a vote
// @Tags ratings
// @Router /api/ratings [post]
func (h *RatingHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req transport.RatingSubmitRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	target, err := domain.ParseTarget(req.Type, req.ItemID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.SubmitVote(stdCtx, target, voterKey(ctx), req.Score)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// voterKey identifies a voter for cooldown purposes. Only the connecting
// address counts; forwarding headers are client-controlled and would let a
// caller mint a fresh cooldown slot per request. A shared NAT sharing one
// cooldown is accepted.
func voterKey(ctx *fasthttp.RequestCtx) string {
	addr := ctx.RemoteAddr()
	if addr == nil {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr.String()); err == nil {
		return host
	}
	return addr.String()
}
