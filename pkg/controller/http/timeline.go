package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/export"
	"github.com/secmon-lab/chronicle/pkg/usecase"
	"github.com/secmon-lab/chronicle/pkg/utils/async"
	"github.com/secmon-lab/chronicle/pkg/utils/errutil"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
)

type timelineSummary struct {
	ID        model.TimelineID `json:"id"`
	Query     string           `json:"query"`
	CreatedAt time.Time        `json:"created_at"`
	Entries   int              `json:"entries"`
}

type listResponse struct {
	Timelines []timelineSummary `json:"timelines"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTimelines(w http.ResponseWriter, r *http.Request) {
	limit := s.listLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errutil.HandleHTTP(r.Context(), w, goerr.New("limit must be a positive integer", goerr.V("limit", v)), http.StatusBadRequest)
			return
		}
		limit = n
	}

	timelines, err := s.timelineUC.List(r.Context(), limit)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	resp := listResponse{Timelines: make([]timelineSummary, 0, len(timelines))}
	for _, t := range timelines {
		resp.Timelines = append(resp.Timelines, timelineSummary{
			ID:        t.ID,
			Query:     t.Query,
			CreatedAt: t.CreatedAt,
			Entries:   len(t.Entries),
		})
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) latestTimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := s.timelineUC.Latest(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, timeline)
}

func (s *Server) getTimeline(w http.ResponseWriter, r *http.Request) {
	id := model.TimelineID(chi.URLParam(r, "id"))

	timeline, err := s.timelineUC.Get(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, timeline)
}

// buildTimeline runs the pipeline synchronously and publishes the result in
// the background
func (s *Server) buildTimeline(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBodyBytes+1))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	if int64(len(body)) > s.maxBodyBytes {
		errutil.HandleHTTP(r.Context(), w, goerr.New("request body too large", goerr.V("limit", s.maxBodyBytes)), http.StatusRequestEntityTooLarge)
		return
	}

	set, err := export.UnmarshalArticles(body, export.FormatJSON)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	timeline, err := s.timelineUC.Build(r.Context(), set.Query, set.Articles)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	async.Dispatch(r.Context(), "publish_timeline", func(ctx context.Context) error {
		s.timelineUC.Publish(ctx, timeline)
		return nil
	})

	writeJSON(w, r, http.StatusCreated, timeline)
}

// statusOf maps domain errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrTimelineNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNoArticles),
		errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrParseFailure):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrRepositoryNotConfigured),
		errors.Is(err, usecase.ErrExtractionNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrDependencyUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
