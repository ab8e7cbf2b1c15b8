package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/api/transport"
	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/pkg/httpcontext"
	analyticsUC "github.com/auktia/backend/usecase/analytics"
)

type AnalyticsHandler struct {
	baseHandler
	uc *analyticsUC.UseCase
}

func NewAnalyticsHandler(uc *analyticsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Event totals per type over a range
// @Tags analytics
// @Router /api/analytics/summary [get]
func (h *AnalyticsHandler) Summary(ctx *fasthttp.RequestCtx) {
	params, _ := h.queryParams(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events := h.uc.Query(stdCtx, params)
	payload := map[string]interface{}{
		"from":   params.From,
		"to":     params.To,
		"totals": analyticsUC.Summarize(events),
	}

	if ctx.QueryArgs().Has("compare") {
		prev := params
		prev.From, prev.To = analyticsUC.PreviousRange(params.From, params.To)
		payload["compare"] = map[string]interface{}{
			"from":   prev.From,
			"to":     prev.To,
			"totals": analyticsUC.Summarize(h.uc.Query(stdCtx, prev)),
		}
	}

	h.respondSuccess(ctx, http.StatusOK, payload)
}

// @Summary Time series of event counts
// @Tags analytics
// @Router /api/analytics/series [get]
func (h *AnalyticsHandler) Series(ctx *fasthttp.RequestCtx) {
	params, gran := h.queryParams(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	payload := map[string]interface{}{
		"from":        params.From,
		"to":          params.To,
		"granularity": gran,
		"buckets":     analyticsUC.Bucketize(h.uc.Query(stdCtx, params), gran),
	}

	if ctx.QueryArgs().Has("compare") {
		prev := params
		prev.From, prev.To = analyticsUC.PreviousRange(params.From, params.To)
		payload["compare"] = map[string]interface{}{
			"from":    prev.From,
			"to":      prev.To,
			"buckets": analyticsUC.Bucketize(h.uc.Query(stdCtx, prev), gran),
		}
	}

	h.respondSuccess(ctx, http.StatusOK, payload)
}

// @Summary Top sections or registrations
// @Tags analytics
// @Router /api/analytics/top [get]
func (h *AnalyticsHandler) Top(ctx *fasthttp.RequestCtx) {
	params, _ := h.queryParams(ctx)
	kind := string(ctx.QueryArgs().Peek("kind"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	// The breakdown selects its own event type; drop any type narrowing
	// from the shared query parser.
	params.Types = nil
	events := h.uc.Query(stdCtx, params)

	var entries []analyticsUC.TopEntry
	switch kind {
	case "registrations":
		entries = analyticsUC.TopRegistrations(events)
	case "", "sections":
		kind = "sections"
		entries = analyticsUC.TopSections(events)
	default:
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "kind must be sections or registrations", nil))
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"kind":    kind,
		"entries": entries,
	})
}

// @Summary Export the event log as CSV
// @Tags analytics
// @Router /api/analytics/export [get]
func (h *AnalyticsHandler) Export(ctx *fasthttp.RequestCtx) {
	params, _ := h.queryParams(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events := h.uc.Query(stdCtx, params)

	var csv string
	if t := string(ctx.QueryArgs().Peek("drill")); t != "" {
		csv = analyticsUC.ExportTypeCSV(events, domain.EventType(t))
	} else {
		csv = analyticsUC.ExportCSV(events)
	}

	ctx.Response.Header.SetContentType("text/csv; charset=utf-8")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="analytics.csv"`)
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBodyString(csv)
}

// queryParams parses the shared range, type and segmentation parameters.
// A named range wins over explicit bounds; missing bounds default to the
// last 30 days.
func (h *AnalyticsHandler) queryParams(ctx *fasthttp.RequestCtx) (analyticsUC.QueryParams, analyticsUC.Granularity) {
	args := ctx.QueryArgs()
	now := time.Now()

	var params analyticsUC.QueryParams
	var gran analyticsUC.Granularity

	if name := string(args.Peek("range")); name != "" {
		params.From, params.To, gran = analyticsUC.ResolveRange(analyticsUC.NamedRange(name), now)
	} else {
		params.From = parseMillis(string(args.Peek("from")), now.AddDate(0, 0, -30).UnixMilli())
		params.To = parseMillis(string(args.Peek("to")), now.UnixMilli())
		gran = analyticsUC.AutoGranularity(params.From, params.To)
	}

	switch g := analyticsUC.Granularity(args.Peek("granularity")); g {
	case analyticsUC.GranHour, analyticsUC.GranDay, analyticsUC.GranWeek, analyticsUC.GranMonth:
		gran = g
	}

	for _, t := range splitList(string(args.Peek("types"))) {
		if et := domain.EventType(t); domain.ValidEventType(et) {
			params.Types = append(params.Types, et)
		}
	}

	params.Filters = analyticsUC.Filters{
		Langs:   splitList(string(args.Peek("lang"))),
		Devices: splitList(string(args.Peek("device"))),
		Routes:  splitList(string(args.Peek("route"))),
	}

	return params, gran
}

func parseMillis(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
