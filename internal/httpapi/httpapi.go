// Package httpapi is the deliberately thin demonstration surface over the
// reader: a single read-only top-stories route plus liveness/readiness
// and metrics endpoints. Request validation, pagination envelopes, rate
// limiting, and response caching headers are the HTTP façade's job and
// stay out of this package, per the core's scope.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jnrpurin/jr-it-news/internal/apperr"
	"github.com/jnrpurin/jr-it-news/internal/hnmodel"
	"github.com/jnrpurin/jr-it-news/internal/logging"
)

// envelope is the standard response wrapper: either data or an error,
// never both.
type envelope struct {
	Error *envelopeErr `json:"error,omitempty"`
	Data  any          `json:"data,omitempty"`
}

type envelopeErr struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeOK(w http.ResponseWriter, payload any) {
	w.Header().Set("content-type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{Data: payload})
}

func writeErr(w http.ResponseWriter, status int, kind apperr.Kind, message string) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &envelopeErr{Kind: kind.String(), Message: message}})
}

// Reader is the narrow capability httpapi needs from reader.Reader.
type Reader interface {
	GetTop(ctx context.Context, n int) ([]hnmodel.Story, error)
}

// Server wires a Reader into chi routes.
type Server struct {
	mux *chi.Mux
	log *logging.Logger
}

// New builds a Server around r, the default n for /top when the query
// omits it, and exposes liveness/readiness/metrics alongside it.
func New(r Reader, defaultN int) *Server {
	s := &Server{mux: chi.NewRouter(), log: logging.Named("httpapi")}

	s.mux.Get("/top", func(w http.ResponseWriter, req *http.Request) {
		n := defaultN
		if q := req.URL.Query().Get("n"); q != "" {
			if parsed, err := strconv.Atoi(q); err == nil {
				n = parsed
			}
		}

		stories, err := r.GetTop(req.Context(), n)
		if err != nil {
			status := http.StatusInternalServerError
			if apperr.KindOf(err) == apperr.KindServiceUnavailable {
				status = http.StatusServiceUnavailable
			}
			s.log.Warn().Err(err).Msg("get_top failed")
			writeErr(w, status, apperr.KindOf(err), err.Error())
			return
		}
		writeOK(w, map[string]any{"stories": stories, "count": len(stories)})
	})

	s.mux.Get("/healthz/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s.mux.Get("/healthz/ready", func(w http.ResponseWriter, req *http.Request) {
		if _, err := r.GetTop(req.Context(), 1); err != nil && apperr.KindOf(err) == apperr.KindServiceUnavailable {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT_READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})

	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Handler returns the underlying http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler { return s.mux }
