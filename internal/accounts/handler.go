package accounts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tdc-backend/internal/httpx"
	"tdc-backend/internal/middleware"
	"tdc-backend/internal/transport"
	"tdc-backend/internal/validation"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, val: val, log: log}
}

func (h *Handler) Routes(r chi.Router, admin func(http.Handler) http.Handler, limiter *middleware.RateLimiter) {
	r.Group(func(public chi.Router) {
		if limiter != nil {
			public.Use(limiter.Middleware)
		}
		public.Post("/auth/login", h.Login)
	})
	r.With(admin).Get("/auth/me", h.Me)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Email = normalizeEmail(req.Email)
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth login: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token, err := h.service.Login(ctx, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidCredentials):
		log.Warn("auth login: invalid credentials", slog.String("email", req.Email))
		transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	case errors.Is(err, ErrNotConfigured):
		log.Warn("auth login: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	default:
		log.Error("auth login: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("auth login: ok", slog.String("user_id", token.User.ID))
	transport.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"token":     token.Value,
		"expiresAt": token.ExpiresAt.UTC(),
		"user":      token.User,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time.UTC()
	}
	transport.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"id":        claims.Subject,
		"email":     claims.Email,
		"role":      claims.Role,
		"expiresAt": expires,
	})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
