package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/export"
	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/specialistvlad/featuregraph/internal/reportstore"
)

// Handler returns the HTTP control surface of the App.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", a.healthHandler)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	r.Get("/graph", a.graphHandler)

	r.Route("/objects", func(r chi.Router) {
		r.Get("/", a.listObjectsHandler)
		r.Get("/{name}", a.getObjectHandler)
		r.Post("/{name}/touch", a.touchHandler)
		r.Post("/{name}/recompute", a.recomputeObjectHandler)
		r.Put("/{name}/properties/{prop}", a.setPropertyHandler)
	})

	r.Post("/recompute", a.recomputeHandler)
	r.Get("/reports", a.reportsHandler)
	r.Get("/reports/latest", a.latestReportHandler)
	return r
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) graphHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	out, err := a.Graph(r.Context(), format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if format == export.FormatMermaid {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	}
	io.WriteString(w, out)
}

func (a *App) listObjectsHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.Objects())
}

func (a *App) getObjectHandler(w http.ResponseWriter, r *http.Request) {
	info, err := a.Object(chi.URLParam(r, "name"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, info)
}

func (a *App) touchHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Touch(chi.URLParam(r, "name")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) recomputeObjectHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	status := http.StatusOK
	if err := a.RecomputeObject(r.Context(), name); err != nil {
		if errors.Is(err, document.ErrObjectNotFound) {
			a.writeError(w, err)
			return
		}
		// The failure is stored on the object and shown in its view.
		status = http.StatusUnprocessableEntity
	}
	info, err := a.Object(name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, status, info)
}

func (a *App) setPropertyHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if err := a.SetProperty(chi.URLParam(r, "name"), chi.URLParam(r, "prop"), string(body)); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) recomputeHandler(w http.ResponseWriter, r *http.Request) {
	report, err := a.Recompute(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, report)
}

func (a *App) reportsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	reports, err := a.Reports(r.Context(), limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, reports)
}

func (a *App) latestReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := a.LatestReport(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, report)
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to encode response.", "error", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, document.ErrObjectNotFound), errors.Is(err, reportstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, recompute.ErrPassInProgress), errors.Is(err, document.ErrBusy):
		status = http.StatusConflict
	}
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}
