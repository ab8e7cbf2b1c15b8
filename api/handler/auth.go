package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/auktia/backend/api/transport"
	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/pkg/httpcontext"
)

type AuthHandler struct {
	baseHandler
	secret   string
	adminKey string
	ttl      time.Duration
}

func NewAuthHandler(secret, adminKey string, ttl time.Duration, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		secret:      secret,
		adminKey:    adminKey,
		ttl:         ttl,
	}
}

// @Summary Exchange the admin key for a session token
// @Tags auth
// @Router /api/admin/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.AdminLoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Key == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	if h.adminKey == "" || subtle.ConstantTimeCompare([]byte(req.Key), []byte(h.adminKey)) != 1 {
		h.logger.Warn("admin login rejected")
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "invalid admin key", nil))
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(h.ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		h.respondError(ctx, domain.WrapError(domain.ErrCodeInternal, "token signing failed", err))
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"token":     signed,
		"expiresAt": now.Add(h.ttl).UnixMilli(),
	})
}
