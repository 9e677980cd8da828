package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/x-thooh/geotech/internal/service/storage"
	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/log/xslog"
)

// Runner starts a settlement run on demand.
type Runner interface {
	Run(ctx context.Context) (int64, error)
}

type Server struct {
	cfg     *Config
	m       *xslog.Manager
	lg      log.Logger
	storage *storage.Storage
	runner  Runner
	handler http.Handler

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	closed bool
}

type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func New(
	cfg *Config,
	m *xslog.Manager,
	reg prometheus.Registerer,
	gatherer prometheus.Gatherer,
	storage *storage.Storage,
	runner Runner,
) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		m:       m,
		lg:      m.GetLogger("geotech.http"),
		storage: storage,
		runner:  runner,
	}
	requests, err := newRequestMetrics(reg)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(Trace)
	r.Use(Log(s.lg))
	r.Use(requests.middleware)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/logging", s.logging)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.listRuns)
		r.Post("/", s.createRun)
		r.Get("/{runNo}", s.getRun)
	})
	s.handler = r
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port))
	if err != nil {
		return err
	}
	// 创建 http.Server
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}
	s.mu.Lock()
	// Stop 可能先于 Start 执行
	if s.closed || ctx.Err() != nil {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	s.srv, s.ln = srv, ln
	s.mu.Unlock()

	s.lg.Info(ctx, "http server listening", "addr", ln.Addr().String())
	// 运行 HTTP 服务（阻塞）
	if err = srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr is the bound address once Start is listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.srv
	s.mu.Unlock()
	if srv != nil {
		// 优雅关闭，等待正在处理的请求完成
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// logging serves the active logging document.
func (s *Server) logging(w http.ResponseWriter, r *http.Request) {
	cfg := s.m.Config()
	if cfg == nil {
		http.Error(w, "logging is not configured", http.StatusServiceUnavailable)
		return
	}
	out, err := log.Marshal(cfg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(out)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := s.storage.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	runNo, err := s.runner.Run(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/runs/%d", runNo))
	writeJSON(w, http.StatusCreated, map[string]string{"run_no": strconv.FormatInt(runNo, 10)})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	runNo, err := strconv.ParseInt(chi.URLParam(r, "runNo"), 10, 64)
	if err != nil {
		http.Error(w, "run number must be an integer", http.StatusBadRequest)
		return
	}
	run, err := s.storage.Get(r.Context(), runNo)
	if errors.Is(err, storage.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.lg.Error(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
