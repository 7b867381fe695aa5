// Package api exposes notes over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"example.com/notepad/internal/document"
	"example.com/notepad/internal/notes"
	"example.com/notepad/internal/service"
)

// Notebook is the per-user note service. It allows unit-testing handlers
// without touching the file system.
type Notebook interface {
	Create(ctx context.Context, title, content string) (notes.Note, error)
	Get(ctx context.Context, id string) (notes.Note, error)
	Update(ctx context.Context, id, title, content string) (notes.Note, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query string) []notes.Note
	Count(ctx context.Context) int
	Apply(ctx context.Context, st service.State, a service.Action) (service.Outcome, error)
}

type Exporter interface {
	ExportSingle(n notes.Note) document.File
	ExportCollection(list []notes.Note) document.File
}

// NotebookResolver returns the notebook of the user making the request.
type NotebookResolver func(ctx context.Context) (Notebook, error)

// ExporterFactory returns an exporter for a format name such as "pdf".
type ExporterFactory func(format string) (Exporter, error)

type Options struct {
	Notebooks NotebookResolver
	Exporters ExporterFactory
	// Auth guards every route except /health. Nil disables authentication.
	Auth          func(http.Handler) http.Handler
	DefaultFormat string
	MaxBodyBytes  int64
	Log           *zap.Logger
}

type Handlers struct {
	notebooks     NotebookResolver
	exporters     ExporterFactory
	auth          func(http.Handler) http.Handler
	defaultFormat string
	maxBody       int64
	log           *zap.Logger
}

func NewHandlers(o Options) *Handlers {
	h := &Handlers{
		notebooks:     o.Notebooks,
		exporters:     o.Exporters,
		auth:          o.Auth,
		defaultFormat: o.DefaultFormat,
		maxBody:       o.MaxBodyBytes,
		log:           o.Log,
	}
	if h.defaultFormat == "" {
		h.defaultFormat = "pdf"
	}
	if h.maxBody <= 0 {
		h.maxBody = 1 << 20
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if h.auth != nil {
			r.Use(h.auth)
		}

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", h.create)
			r.Get("/", h.list)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.get)
				r.Put("/", h.update)
				r.Delete("/", h.delete)
				r.Get("/export", h.exportOne)
			})
		})

		r.Get("/export", h.exportAll)
		r.Post("/session", h.session)
	})

	return r
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	nb, ok := h.notebook(w, r)
	if !ok {
		return
	}

	var req notes.CreateNoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	n, err := nb.Create(r.Context(), req.Title, req.Content)
	if errors.Is(err, service.ErrEmptyNote) {
		writeError(w, http.StatusBadRequest, "title and content required")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	nb, ok := h.notebook(w, r)
	if !ok {
		return
	}

	n, err := nb.Get(r.Context(), chi.URLParam(r, "id"))
	if !h.checkNote(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	nb, ok := h.notebook(w, r)
	if !ok {
		return
	}

	var req notes.UpdateNoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	n, err := nb.Update(r.Context(), chi.URLParam(r, "id"), req.Title, req.Content)
	if errors.Is(err, service.ErrEmptyNote) {
		writeError(w, http.StatusBadRequest, "title and content required")
		return
	}
	if !h.checkNote(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	nb, ok := h.notebook(w, r)
	if !ok {
		return
	}

	if !h.checkNote(w, nb.Delete(r.Context(), chi.URLParam(r, "id"))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	nb, ok := h.notebook(w, r)
	if !ok {
		return
	}

	items := nb.List(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
		"total": nb.Count(r.Context()),
	})
}

func (h *Handlers) exportOne(w http.ResponseWriter, r *http.Request) {
	nb, ok := h.notebook(w, r)
	if !ok {
		return
	}
	exp, ok := h.exporter(w, r)
	if !ok {
		return
	}

	n, err := nb.Get(r.Context(), chi.URLParam(r, "id"))
	if !h.checkNote(w, err) {
		return
	}
	writeFile(w, exp.ExportSingle(n))
}

func (h *Handlers) exportAll(w http.ResponseWriter, r *http.Request) {
	nb, ok := h.notebook(w, r)
	if !ok {
		return
	}
	exp, ok := h.exporter(w, r)
	if !ok {
		return
	}
	writeFile(w, exp.ExportCollection(nb.List(r.Context(), "")))
}

type sessionRequest struct {
	State   service.State      `json:"state"`
	Action  service.ActionKind `json:"action"`
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Content string             `json:"content"`
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) {
	nb, ok := h.notebook(w, r)
	if !ok {
		return
	}

	var req sessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := nb.Apply(r.Context(), req.State, service.Action{
		Kind:    req.Action,
		ID:      req.ID,
		Title:   req.Title,
		Content: req.Content,
	})
	if errors.Is(err, service.ErrUnknownAction) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) notebook(w http.ResponseWriter, r *http.Request) (Notebook, bool) {
	nb, err := h.notebooks(r.Context())
	if err != nil {
		h.log.Error("resolve notebook", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "notes unavailable")
		return nil, false
	}
	return nb, true
}

func (h *Handlers) exporter(w http.ResponseWriter, r *http.Request) (Exporter, bool) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.defaultFormat
	}
	exp, err := h.exporters(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return exp, true
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// checkNote writes the error response for a failed note operation and
// reports whether err was nil.
func (h *Handlers) checkNote(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, notes.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.Error("note operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
	return false
}

func (h *Handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeFile(w http.ResponseWriter, f document.File) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
