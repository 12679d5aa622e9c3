package courses

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tdc-backend/internal/cache"
	"tdc-backend/internal/content"
	"tdc-backend/internal/httpx"
	"tdc-backend/internal/middleware"
	"tdc-backend/internal/transport"
	"tdc-backend/internal/validation"
)

const cachePrefix = "courses:"

type Handler struct {
	service  *Service
	val      *validation.Validator
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, c cache.Cache, cacheTTL time.Duration, log *slog.Logger) *Handler {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Handler{
		service:  service,
		val:      val,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Routes mounts the public reads and the admin writes; admin wraps the latter.
func (h *Handler) Routes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/courses", h.List)
	r.Get("/courses/{id}", h.Get)
	r.Group(func(protected chi.Router) {
		protected.Use(admin)
		protected.Post("/courses", h.Create)
		protected.Put("/courses/{id}", h.Update)
		protected.Delete("/courses/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 20, 100)
	if err != nil {
		log.Warn("courses list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	filter := ListFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Level:    content.Level(strings.TrimSpace(r.URL.Query().Get("level"))),
	}
	if filter.Level != "" && !filter.Level.Valid() {
		log.Warn("courses list: invalid level", slog.String("level", string(filter.Level)))
		transport.WriteError(w, http.StatusBadRequest, "invalid level", map[string]string{"level": "level"})
		return
	}

	cacheKey := cache.Key(cachePrefix+"list", filter.Category, string(filter.Level), strconv.FormatInt(limit, 10), strconv.FormatInt(offset, 10))
	if cached, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
		log.Info("courses list: cache hit")
		transport.WriteCached(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.service.List(ctx, filter, limit, offset)
	if err != nil {
		log.Error("courses list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("courses list: ok", slog.Int("count", len(items)))
	h.writeCacheable(w, r, cacheKey, map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn("courses get: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	cacheKey := cachePrefix + "get:" + id
	if cached, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
		log.Info("courses get: cache hit", slog.String("course_id", id))
		transport.WriteCached(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	course, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(w, log, "courses get", id, err)
		return
	}

	log.Info("courses get: ok", slog.String("course_id", id))
	h.writeCacheable(w, r, cacheKey, map[string]interface{}{"course": course})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	course, ok := h.decode(w, r, log, "admin courses create")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	created, err := h.service.Create(ctx, course)
	if err != nil {
		h.writeServiceError(w, log, "admin courses create", "", err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("admin courses create: ok", slog.String("course_id", created.ID.String()))
	transport.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"course": created})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn("admin courses update: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}
	course, ok := h.decode(w, r, log, "admin courses update")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	updated, err := h.service.Update(ctx, id, course)
	if err != nil {
		h.writeServiceError(w, log, "admin courses update", id, err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("admin courses update: ok", slog.String("course_id", id), slog.Int64("version", updated.Version))
	transport.WriteSuccess(w, http.StatusOK, map[string]interface{}{"course": updated})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn("admin courses delete: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.writeServiceError(w, log, "admin courses delete", id, err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("admin courses delete: ok", slog.String("course_id", id))
	transport.WriteSuccess(w, http.StatusOK, nil)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, action string) (content.Course, bool) {
	var course content.Course
	if err := httpx.DecodeJSON(r.Body, &course); err != nil {
		if errors.Is(err, content.ErrInvalidContentShape) {
			log.Warn(action+": invalid section content", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
			return content.Course{}, false
		}
		log.Warn(action + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return content.Course{}, false
	}
	if err := h.val.Struct(course); err != nil {
		log.Warn(action + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return content.Course{}, false
	}
	return course, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, action, id string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(action+": not found", slog.String("course_id", id))
		transport.WriteError(w, http.StatusNotFound, "course not found", nil)
	case errors.Is(err, ErrVersionConflict):
		log.Warn(action+": version conflict", slog.String("course_id", id))
		transport.WriteError(w, http.StatusConflict, "course was modified since it was loaded", nil)
	case errors.Is(err, ErrInvalidContent):
		log.Warn(action+": invalid content", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		log.Error(action+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
}

func (h *Handler) writeCacheable(w http.ResponseWriter, r *http.Request, key string, fields map[string]interface{}) {
	payload, err := transport.EncodeSuccess(fields)
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "encode error", nil)
		return
	}
	_ = h.cache.Set(r.Context(), key, payload, h.cacheTTL)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) invalidate(ctx context.Context, log *slog.Logger) {
	if err := h.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		log.Warn("courses cache: invalidate failed", slog.String("error", err.Error()))
	}
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
