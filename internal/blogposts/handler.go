package blogposts

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

const cachePrefix = "posts:"

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

func (h *Handler) Routes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/blog-posts", h.List)
	r.Get("/blog-posts/{id}", h.Get)
	r.Get("/blog-posts/{id}/html", h.HTML)
	r.Group(func(protected chi.Router) {
		protected.Use(admin)
		protected.Post("/blog-posts", h.Create)
		protected.Put("/blog-posts/{id}", h.Update)
		protected.Post("/blog-posts/{id}/sections", h.AddSection)
		protected.Put("/blog-posts/{id}/sections/{sectionId}", h.UpdateSection)
		protected.Delete("/blog-posts/{id}/sections/{sectionId}", h.DeleteSection)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 20, 100)
	if err != nil {
		log.Warn("blog posts list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	filter := ListFilter{
		Tag:   strings.TrimSpace(r.URL.Query().Get("tag")),
		Topic: strings.TrimSpace(r.URL.Query().Get("topic")),
	}

	cacheKey := cache.Key(cachePrefix+"list", filter.Tag, filter.Topic, strconv.FormatInt(limit, 10), strconv.FormatInt(offset, 10))
	if cached, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
		log.Info("blog posts list: cache hit")
		transport.WriteCached(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.service.List(ctx, filter, limit, offset)
	if err != nil {
		log.Error("blog posts list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("blog posts list: ok", slog.Int("count", len(items)))
	h.writeCacheable(w, r, cacheKey, map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.postID(w, r, log, "blog posts get")
	if !ok {
		return
	}

	cacheKey := cachePrefix + "get:" + id
	if cached, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
		log.Info("blog posts get: cache hit", slog.String("post_id", id))
		transport.WriteCached(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	post, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(w, log, "blog posts get", id, err)
		return
	}

	log.Info("blog posts get: ok", slog.String("post_id", id))
	h.writeCacheable(w, r, cacheKey, map[string]interface{}{"post": post})
}

func (h *Handler) HTML(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.postID(w, r, log, "blog posts html")
	if !ok {
		return
	}

	cacheKey := cachePrefix + "html:" + id
	if cached, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
		log.Info("blog posts html: cache hit", slog.String("post_id", id))
		transport.WriteCached(w, http.StatusOK, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	html, err := h.service.RenderHTML(ctx, id)
	if err != nil {
		h.writeServiceError(w, log, "blog posts html", id, err)
		return
	}

	log.Info("blog posts html: ok", slog.String("post_id", id))
	h.writeCacheable(w, r, cacheKey, map[string]interface{}{"html": html})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	post, ok := h.decodePost(w, r, log, "admin blog posts create")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	created, err := h.service.Create(ctx, post)
	if err != nil {
		h.writeServiceError(w, log, "admin blog posts create", "", err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("admin blog posts create: ok", slog.String("post_id", created.ID.String()))
	transport.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"post": created})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.postID(w, r, log, "admin blog posts update")
	if !ok {
		return
	}
	post, ok := h.decodePost(w, r, log, "admin blog posts update")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	updated, err := h.service.Update(ctx, id, post)
	if err != nil {
		h.writeServiceError(w, log, "admin blog posts update", id, err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("admin blog posts update: ok", slog.String("post_id", id), slog.Int64("version", updated.Version))
	transport.WriteSuccess(w, http.StatusOK, map[string]interface{}{"post": updated})
}

func (h *Handler) AddSection(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.postID(w, r, log, "admin blog posts add section")
	if !ok {
		return
	}
	section, ok := h.decodeSection(w, r, log, "admin blog posts add section")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	saved, version, err := h.service.AddSection(ctx, id, section)
	if err != nil {
		h.writeServiceError(w, log, "admin blog posts add section", id, err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("admin blog posts add section: ok", slog.String("post_id", id), slog.String("section_id", saved.ID.String()))
	transport.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"section": saved, "version": version})
}

func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.postID(w, r, log, "admin blog posts update section")
	if !ok {
		return
	}
	sectionID := strings.TrimSpace(chi.URLParam(r, "sectionId"))
	section, ok := h.decodeSection(w, r, log, "admin blog posts update section")
	if !ok {
		return
	}
	if section.ID.IsPersisted() && section.ID.String() != sectionID {
		log.Warn("admin blog posts update section: id mismatch", slog.String("section_id", sectionID))
		transport.WriteError(w, http.StatusBadRequest, "section id does not match path", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	version, err := h.service.UpdateSection(ctx, id, sectionID, section)
	if err != nil {
		h.writeServiceError(w, log, "admin blog posts update section", id, err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("admin blog posts update section: ok", slog.String("post_id", id), slog.String("section_id", sectionID))
	transport.WriteSuccess(w, http.StatusOK, map[string]interface{}{"version": version})
}

func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.postID(w, r, log, "admin blog posts delete section")
	if !ok {
		return
	}
	sectionID := strings.TrimSpace(chi.URLParam(r, "sectionId"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	version, err := h.service.DeleteSection(ctx, id, sectionID)
	if err != nil {
		h.writeServiceError(w, log, "admin blog posts delete section", id, err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("admin blog posts delete section: ok", slog.String("post_id", id), slog.String("section_id", sectionID))
	transport.WriteSuccess(w, http.StatusOK, map[string]interface{}{"version": version})
}

func (h *Handler) postID(w http.ResponseWriter, r *http.Request, log *slog.Logger, action string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn(action + ": missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return "", false
	}
	return id, true
}

func (h *Handler) decodePost(w http.ResponseWriter, r *http.Request, log *slog.Logger, action string) (content.BlogPost, bool) {
	var post content.BlogPost
	if !h.decode(w, r, log, action, &post) {
		return content.BlogPost{}, false
	}
	if err := h.val.Struct(post); err != nil {
		log.Warn(action + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return content.BlogPost{}, false
	}
	return post, true
}

func (h *Handler) decodeSection(w http.ResponseWriter, r *http.Request, log *slog.Logger, action string) (content.Section, bool) {
	var section content.Section
	if !h.decode(w, r, log, action, &section) {
		return content.Section{}, false
	}
	return section, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, action string, v interface{}) bool {
	err := httpx.DecodeJSON(r.Body, v)
	if err == nil {
		return true
	}
	if errors.Is(err, content.ErrInvalidContentShape) {
		log.Warn(action+": invalid section content", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return false
	}
	log.Warn(action + ": invalid json")
	transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
	return false
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, action, id string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(action+": not found", slog.String("post_id", id))
		transport.WriteError(w, http.StatusNotFound, "blog post not found", nil)
	case errors.Is(err, ErrSectionNotFound):
		log.Warn(action+": section not found", slog.String("post_id", id))
		transport.WriteError(w, http.StatusNotFound, "section not found", nil)
	case errors.Is(err, ErrVersionConflict):
		log.Warn(action+": version conflict", slog.String("post_id", id))
		transport.WriteError(w, http.StatusConflict, "blog post was modified since it was loaded", nil)
	case errors.Is(err, ErrTypeMismatch), errors.Is(err, ErrInvalidContent):
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
		log.Warn("blog posts cache: invalidate failed", slog.String("error", err.Error()))
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
