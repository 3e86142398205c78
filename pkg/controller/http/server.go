package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// TimelineUseCase is the subset of the timeline use case served over HTTP
type TimelineUseCase interface {
	Build(ctx context.Context, query string, articles []*model.Article) (*model.Timeline, error)
	Publish(ctx context.Context, timeline *model.Timeline)
	Get(ctx context.Context, id model.TimelineID) (*model.Timeline, error)
	Latest(ctx context.Context) (*model.Timeline, error)
	List(ctx context.Context, limit int) ([]*model.Timeline, error)
}

type Server struct {
	router       *chi.Mux
	timelineUC   TimelineUseCase
	maxBodyBytes int64
	listLimit    int
}

type Options func(*Server)

// WithMaxBodyBytes limits the size of a build request body
func WithMaxBodyBytes(n int64) Options {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithListLimit sets the default number of timelines listed
func WithListLimit(n int) Options {
	return func(s *Server) {
		s.listLimit = n
	}
}

func New(timelineUC TimelineUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		timelineUC:   timelineUC,
		maxBodyBytes: 10 << 20,
		listLimit:    20,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/timelines", func(r chi.Router) {
		r.Get("/", s.listTimelines)
		r.Post("/", s.buildTimeline)
		r.Get("/latest", s.latestTimeline)
		r.Get("/{id}", s.getTimeline)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
