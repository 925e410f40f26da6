// Package web serves the health, status and metrics endpoints.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Farengier/usernotes-bot/internal/orm"
	"github.com/Farengier/usernotes-bot/internal/signal"
	"github.com/Farengier/usernotes-bot/internal/supervisor"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	defaultActions = 50
	maxActions     = 500
)

type Config interface {
	Addr() string
	WriteTimeout() time.Duration
	ReadTimeout() time.Duration
}

type StatusProvider interface {
	Status() []supervisor.Status
}

type Toggle interface {
	Enabled() bool
}

type Journal interface {
	Recent(ctx context.Context, community string, limit int) ([]orm.Action, error)
}

type Deps struct {
	Workers   StatusProvider
	Rehearsal Toggle
	Journal   Journal
}

type status struct {
	DryRun  bool                `json:"dry_run"`
	Workers []supervisor.Status `json:"workers"`
}

type action struct {
	Time        time.Time `json:"time"`
	Community   string    `json:"community"`
	Moderator   string    `json:"moderator"`
	Verb        string    `json:"verb"`
	Target      string    `json:"target_author"`
	TargetID    string    `json:"target_id"`
	Permalink   string    `json:"permalink"`
	Annotation  string    `json:"annotation"`
	Restriction string    `json:"restriction,omitempty"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
}

func Router(deps Deps) *mux.Router {
	h := &handlers{deps: deps}
	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/status", h.status).Methods(http.MethodGet)
	r.HandleFunc("/actions", h.actions).Methods(http.MethodGet)
	r.HandleFunc("/actions/{community}", h.actions).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Start serves until shutdown.
func Start(cfg Config, deps Deps) {
	log.Infof("[Web] Starting server on %s", cfg.Addr())

	bctx, cncl := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler:      Router(deps),
		Addr:         cfg.Addr(),
		WriteTimeout: cfg.WriteTimeout(),
		ReadTimeout:  cfg.ReadTimeout(),
		BaseContext: func(_ net.Listener) context.Context {
			return bctx
		},
	}

	signal.OnShutdown(func() error {
		log.Info("[Web] Shutdown server")
		cncl()
		err := srv.Shutdown(context.Background())
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		return nil
	})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("[Web] server stopped: %s", err)
	}
}

type handlers struct {
	deps Deps
}

func (h *handlers) health(rw http.ResponseWriter, _ *http.Request) {
	_, _ = fmt.Fprint(rw, "ok")
}

func (h *handlers) status(rw http.ResponseWriter, _ *http.Request) {
	writeJSON(rw, status{
		DryRun:  h.deps.Rehearsal.Enabled(),
		Workers: h.deps.Workers.Status(),
	})
}

func (h *handlers) actions(rw http.ResponseWriter, r *http.Request) {
	limit := defaultActions
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			http.Error(rw, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		limit = min(n, maxActions)
	}

	rows, err := h.deps.Journal.Recent(r.Context(), mux.Vars(r)["community"], limit)
	if err != nil {
		log.Errorf("[Web] listing actions failed: %s", err)
		http.Error(rw, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]action, 0, len(rows))
	for _, a := range rows {
		out = append(out, action{
			Time:        a.CreatedAt,
			Community:   a.Community,
			Moderator:   a.Moderator,
			Verb:        a.Verb,
			Target:      a.TargetAuthor,
			TargetID:    a.TargetID,
			Permalink:   a.Permalink,
			Annotation:  a.Annotation,
			Restriction: a.Restriction,
			Outcome:     a.Outcome,
			Error:       a.Error,
		})
	}
	writeJSON(rw, out)
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		log.Errorf("[Web] encoding response failed: %s", err)
	}
}
