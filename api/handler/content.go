package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/api/transport"
	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/pkg/httpcontext"
	contentUC "github.com/auktia/backend/usecase/content"
)

type ContentHandler struct {
	baseHandler
	uc *contentUC.UseCase
}

func NewContentHandler(uc *contentUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Load the site content document
// @Tags content
// @Router /api/content [get]
func (h *ContentHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	// Clients poll for revision changes, so responses must never be cached.
	ctx.Response.Header.Set("Cache-Control", "no-store")

	if ctx.QueryArgs().Has("revOnly") {
		h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
			"rev": h.uc.Revision(stdCtx),
		})
		return
	}

	doc := h.uc.Load(stdCtx)
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"rev":     doc.Revision,
		"content": doc,
	})
}

// @Summary Save the full content document
// @Tags content
// @Router /api/content [put]
func (h *ContentHandler) Save(ctx *fasthttp.RequestCtx) {
	body := ctx.PostBody()
	if !json.Valid(body) || len(body) == 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	// Unknown fields are dropped and missing sections filled from defaults,
	// so a partial document cannot corrupt the store.
	doc := domain.MergeDocument(body)

	// Clients that send the revision they loaded get stale-write detection.
	// Without baseRev the save is last-write-wins.
	baseRev := int64(0)
	force := true
	if ctx.QueryArgs().Has("baseRev") {
		baseRev = int64(ctx.QueryArgs().GetUintOrZero("baseRev"))
		force = false
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rev, err := h.uc.Save(stdCtx, doc, baseRev, force)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"ok": true, "rev": rev})
}

// @Summary Restore the built-in default document
// @Tags content
// @Router /api/content/reset [post]
func (h *ContentHandler) Reset(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rev, err := h.uc.Reset(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"ok": true, "rev": rev})
}
