package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tdc-backend/internal/middleware"
	"tdc-backend/internal/transport"
	"tdc-backend/internal/upload"
)

const formOverhead = 1 << 20

type Handler struct {
	service *Service
	log     *slog.Logger
}

func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes mounts the upload endpoints behind admin and the optional limiter.
func (h *Handler) Routes(r chi.Router, admin func(http.Handler) http.Handler, limiter *middleware.RateLimiter) {
	r.Group(func(protected chi.Router) {
		if limiter != nil {
			protected.Use(limiter.Middleware)
		}
		protected.Use(admin)
		protected.Post("/uploads/files", h.UploadFile)
		protected.Post("/uploads/images", h.UploadImage)
	})
}

func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	stored, ok := h.save(w, r, log, upload.KindRaw, "uploads file")
	if !ok {
		return
	}
	transport.WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"fileUrl":  stored.URL,
		"fileName": stored.Name,
		"fileSize": stored.Size,
		"fileType": stored.MIMEType,
	})
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	stored, ok := h.save(w, r, log, upload.KindImage, "uploads image")
	if !ok {
		return
	}
	transport.WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"secure_url": stored.URL,
	})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, log *slog.Logger, kind upload.Kind, action string) (Stored, bool) {
	limit := h.service.Policy().MaxFileBytes
	if kind == upload.KindImage {
		limit = h.service.Policy().MaxImageBytes
	}
	if limit <= 0 {
		limit = 100 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn(action+": too large", slog.Int64("limit", limit))
			transport.WriteError(w, http.StatusBadRequest, "file too large", nil)
			return Stored{}, false
		}
		log.Warn(action+": invalid multipart", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid multipart form", nil)
		return Stored{}, false
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn(action + ": missing file")
		transport.WriteError(w, http.StatusBadRequest, "missing file", map[string]string{"file": "required"})
		return Stored{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		log.Warn(action+": read failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "could not read file", nil)
		return Stored{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	stored, err := h.service.Save(ctx, upload.Blob{Name: header.Filename, Data: data}, kind)
	if err != nil {
		var rejected *upload.RejectedError
		if errors.As(err, &rejected) {
			log.Warn(action+": rejected", slog.String("reason", rejected.Reason))
			transport.WriteError(w, http.StatusBadRequest, rejected.Reason, nil)
			return Stored{}, false
		}
		log.Error(action+": storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "storage error", nil)
		return Stored{}, false
	}

	log.Info(action+": ok",
		slog.String("url", stored.URL),
		slog.String("mime", stored.MIMEType),
		slog.Int64("bytes", stored.Bytes),
	)
	return stored, true
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
