package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jgoulah/usagegrid/internal/cache"
	"github.com/jgoulah/usagegrid/internal/render"
	"github.com/jgoulah/usagegrid/internal/usage"
	"github.com/jgoulah/usagegrid/pkg/models"
)

// LoadFunc produces a freshly processed dashboard
type LoadFunc func(ctx context.Context) (*models.Dashboard, error)

// Server serves the dashboard to browsers
type Server struct {
	router  *mux.Router
	cache   *cache.Cache
	load    LoadFunc
	group   singleflight.Group
	opts    render.Options
	metrics *Metrics
	logger  *zap.Logger
}

// New builds the router. Dashboards are loaded lazily and cached until the
// cache entry expires.
func New(load LoadFunc, c *cache.Cache, opts render.Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:  mux.NewRouter(),
		cache:   c,
		load:    load,
		opts:    opts,
		metrics: NewMetrics(),
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.CompressHandler(s.router),
	)
}

func (s *Server) setupRoutes() {
	s.router.Use(s.instrument)
	s.router.HandleFunc("/", s.dashboardHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/chart.svg", s.chartHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/api/summary", s.summaryHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/refresh", s.refreshHandler).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("dashboard server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("server is shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// dashboard returns the cached dashboard or loads a new one. Concurrent
// misses share a single load.
func (s *Server) dashboard(ctx context.Context) (*models.Dashboard, error) {
	if dash, ok := s.cache.Dashboard(); ok {
		return dash, nil
	}

	v, err, _ := s.group.Do("dashboard", func() (interface{}, error) {
		start := time.Now()
		dash, err := s.load(context.WithoutCancel(ctx))
		if err != nil {
			s.metrics.fetchesTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		outcome := "ok"
		if len(dash.Records) == 0 {
			outcome = "empty"
		}
		s.metrics.fetchesTotal.WithLabelValues(outcome).Inc()
		s.metrics.recordsLoaded.Set(float64(len(dash.Records)))
		s.metrics.devicesShown.Set(float64(len(usage.Displayable(dash.Groups))))

		s.logger.Info("dashboard loaded",
			zap.String("source", dash.Source),
			zap.Int("records", len(dash.Records)),
			zap.Int("devices", len(dash.Groups)),
			zap.Duration("took", time.Since(start)),
		)

		s.cache.SetDashboard(dash)
		return dash, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Dashboard), nil
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	dash, err := s.dashboard(r.Context())
	if err != nil {
		s.fail(w, "loading dashboard", err)
		return
	}

	var buf bytes.Buffer
	if err := render.Dashboard(&buf, dash, s.opts); err != nil {
		s.fail(w, "rendering dashboard", err)
		return
	}

	s.logger.Debug("dashboard rendered", zap.String("size", humanize.Bytes(uint64(buf.Len()))))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) chartHandler(w http.ResponseWriter, r *http.Request) {
	dash, err := s.dashboard(r.Context())
	if err != nil {
		s.fail(w, "loading dashboard", err)
		return
	}

	var buf bytes.Buffer
	if err := render.Chart(&buf, dash, s.opts.Chart); err != nil {
		if errors.Is(err, render.ErrNoSeries) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.fail(w, "rendering chart", err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

// summaryResponse is the JSON body of /api/summary
type summaryResponse struct {
	Date    string           `json:"date"`
	Source  string           `json:"source"`
	Devices []models.Summary `json:"devices"`
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	dash, err := s.dashboard(r.Context())
	if err != nil {
		s.fail(w, "loading dashboard", err)
		return
	}

	resp := summaryResponse{
		Date:    dash.Date.Format("2006-01-02"),
		Source:  dash.Source,
		Devices: usage.Summaries(dash.Groups),
	}
	if resp.Devices == nil {
		resp.Devices = []models.Summary{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// refreshHandler drops the cached dashboard and loads a new session
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	s.cache.Invalidate()
	s.group.Forget("dashboard")

	dash, err := s.dashboard(r.Context())
	if err != nil {
		s.fail(w, "loading dashboard", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"source":  dash.Source,
		"records": len(dash.Records),
		"devices": len(usage.Displayable(dash.Groups)),
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.logger.Error(what, zap.Error(err))
	http.Error(w, what+": "+err.Error(), http.StatusInternalServerError)
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		s.metrics.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}
