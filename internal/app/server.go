package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/klabast/wb-services/time-travel/internal/contributions"
)

// Options configures a Server
type Options struct {
	Config Config
	Logger *zap.Logger
	// Static holds the embedded assets, served below /static/
	Static    fs.FS
	IndexHTML []byte
	// Fetcher, when set, replaces synthetic data with real contributions
	Fetcher contributions.Fetcher
	Auth    *Authenticator
	Now     func() time.Time
}

// Server serves the calendar UI and its JSON API
type Server struct {
	cfg       Config
	logger    *zap.Logger
	static    fs.FS
	indexHTML []byte
	fetcher   contributions.Fetcher
	auth      *Authenticator
	sessions  *SessionStore
	now       func() time.Time
	mux       *http.ServeMux
}

// NewServer builds a server and registers its routes
func NewServer(opts Options) *Server {
	s := &Server{
		cfg:       opts.Config,
		logger:    opts.Logger,
		static:    opts.Static,
		indexHTML: opts.IndexHTML,
		fetcher:   opts.Fetcher,
		auth:      opts.Auth,
		now:       opts.Now,
		mux:       http.NewServeMux(),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.auth == nil {
		s.auth = &Authenticator{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.sessions = NewSessionStore(SessionMaxAge, s.now)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.ServeIndex)
	s.mux.HandleFunc("GET /api/config", s.GetConfig)
	s.mux.HandleFunc("GET /api/calendar", s.HandleCalendar)
	s.mux.HandleFunc("GET /api/selections", s.GetSelections)
	s.mux.HandleFunc("POST /api/selections", s.auth.Require(s.ApplySelection, s.logger))
	s.mux.HandleFunc("POST /api/selections/clear", s.auth.Require(s.ClearSelections, s.logger))
	s.mux.HandleFunc("GET /api/script", s.HandleScript)
	s.mux.HandleFunc("GET /api/export", s.HandleExport)

	if s.static != nil {
		s.mux.Handle("GET /static/", http.FileServer(http.FS(s.static)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	s.mux.ServeHTTP(rec, r)

	s.logger.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

// Run listens on the configured port until ctx is canceled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully within the configured timeout
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		source := SourceSynthetic
		if s.fetcher != nil {
			source = SourceContributions
		}
		s.logger.Info("starting time-travel",
			zap.String("addr", "http://"+ln.Addr().String()),
			zap.String("source", source),
			zap.Bool("edit_protected", s.auth.Enabled()),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = DefaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
