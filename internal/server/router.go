// internal/server/router.go
//
// Read-only settings inspector.
//
// Routes
// ------
//
//	GET /healthz              – liveness, always 200 once serving.
//	GET /metrics              – Prometheus registry.
//	GET /settings             – whole redacted tree.
//	GET /settings/{section}   – one dotted section, e.g. sites.front.
//
// `?format=yaml` switches the body from JSON to YAML.  The tree is redacted
// once at construction; handlers never see the secrets.
package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/taiga-settings/internal/middleware"
	"github.com/yanizio/taiga-settings/internal/settings"
)

// Router builds the inspector handler for s.
func Router(s *settings.Settings, log *zap.SugaredLogger) http.Handler {
	view := s.Redacted()

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	render := func(w http.ResponseWriter, r *http.Request, section string) {
		format := settings.FormatJSON
		ctype := "application/json"
		if r.URL.Query().Get("format") == "yaml" {
			format, ctype = settings.FormatYAML, "application/yaml"
		}

		body, err := settings.Marshal(view, section, format)
		switch {
		case errors.Is(err, settings.ErrUnknownSection):
			http.NotFound(w, r)
			return
		case err != nil:
			log.Errorw("render settings failed", "section", section, "err", err)
			http.Error(w, "render error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ctype)
		_, _ = w.Write(body)
	}

	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
		render(w, r, "")
	})
	r.Get("/settings/{section}", func(w http.ResponseWriter, r *http.Request) {
		render(w, r, chi.URLParam(r, "section"))
	})
	return r
}
