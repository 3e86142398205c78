package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/chronicle/pkg/controller/http"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/usecase"
	"github.com/secmon-lab/chronicle/pkg/utils/async"
)

type mockTimelineUC struct {
	mu        sync.Mutex
	timelines map[model.TimelineID]*model.Timeline
	order     []model.TimelineID
	published []model.TimelineID
	buildErr  error

	gotQuery    string
	gotArticles []*model.Article
}

func newMockUC() *mockTimelineUC {
	return &mockTimelineUC{timelines: make(map[model.TimelineID]*model.Timeline)}
}

func (m *mockTimelineUC) add(t *model.Timeline) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timelines[t.ID] = t
	m.order = append(m.order, t.ID)
}

func (m *mockTimelineUC) Build(ctx context.Context, query string, articles []*model.Article) (*model.Timeline, error) {
	m.gotQuery = query
	m.gotArticles = articles
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	if len(articles) == 0 {
		return nil, goerr.Wrap(usecase.ErrNoArticles, "cannot build timeline")
	}
	t := &model.Timeline{
		ID:        model.NewTimelineID(),
		Query:     query,
		CreatedAt: time.Now().UTC(),
		Entries:   []*model.Entry{{Milestone: "Launched", Sources: []string{}}},
	}
	m.add(t)
	return t, nil
}

func (m *mockTimelineUC) Publish(ctx context.Context, timeline *model.Timeline) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, timeline.ID)
}

func (m *mockTimelineUC) Get(ctx context.Context, id model.TimelineID) (*model.Timeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timelines[id]; ok {
		return t, nil
	}
	return nil, goerr.Wrap(model.ErrTimelineNotFound, "timeline not found")
}

func (m *mockTimelineUC) Latest(ctx context.Context) (*model.Timeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) == 0 {
		return nil, goerr.Wrap(model.ErrTimelineNotFound, "no timeline stored")
	}
	return m.timelines[m.order[len(m.order)-1]], nil
}

func (m *mockTimelineUC) List(ctx context.Context, limit int) ([]*model.Timeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Timeline
	for i := len(m.order) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.timelines[m.order[i]])
	}
	return result, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := server.New(newMockUC())
	w := do(t, s, http.MethodGet, "/health", "")
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"ok"`)
}

func TestBuildTimeline(t *testing.T) {
	uc := newMockUC()
	s := server.New(uc)

	w := do(t, s, http.MethodPost, "/api/timelines", `{
		"query": "lunar lander",
		"articles": [{"url": "https://example.com/a", "source": "BBC", "content": "The lander launched on January 10, 2024."}]
	}`)
	gt.Number(t, w.Code).Equal(http.StatusCreated)
	gt.String(t, w.Header().Get("Content-Type")).Equal("application/json")

	var got model.Timeline
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &got)).Required()
	gt.String(t, got.Query).Equal("lunar lander")
	gt.String(t, uc.gotQuery).Equal("lunar lander")
	gt.Array(t, uc.gotArticles).Length(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gt.NoError(t, async.Wait(ctx)).Required()

	uc.mu.Lock()
	defer uc.mu.Unlock()
	gt.Value(t, uc.published).Equal([]model.TimelineID{got.ID})
}

func TestBuildTimelineErrors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		w := do(t, server.New(newMockUC()), http.MethodPost, "/api/timelines", `{"query":`)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("no articles", func(t *testing.T) {
		w := do(t, server.New(newMockUC()), http.MethodPost, "/api/timelines", `{"query": "q", "articles": []}`)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("dependency unavailable", func(t *testing.T) {
		uc := newMockUC()
		uc.buildErr = goerr.Wrap(model.ErrDependencyUnavailable, "embedding service down")
		w := do(t, server.New(uc), http.MethodPost, "/api/timelines", `[{"url": "u", "content": "c"}]`)
		gt.Number(t, w.Code).Equal(http.StatusBadGateway)
	})

	t.Run("body too large", func(t *testing.T) {
		s := server.New(newMockUC(), server.WithMaxBodyBytes(16))
		w := do(t, s, http.MethodPost, "/api/timelines", `{"query": "this body is longer than sixteen bytes"}`)
		gt.Number(t, w.Code).Equal(http.StatusRequestEntityTooLarge)
	})
}

func TestGetTimeline(t *testing.T) {
	uc := newMockUC()
	stored := &model.Timeline{ID: "tl-1", Query: "stored", Entries: []*model.Entry{}}
	uc.add(stored)
	s := server.New(uc)

	w := do(t, s, http.MethodGet, "/api/timelines/tl-1", "")
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"query":"stored"`)

	w = do(t, s, http.MethodGet, "/api/timelines/unknown", "")
	gt.Number(t, w.Code).Equal(http.StatusNotFound)
}

func TestLatestTimeline(t *testing.T) {
	uc := newMockUC()
	s := server.New(uc)

	w := do(t, s, http.MethodGet, "/api/timelines/latest", "")
	gt.Number(t, w.Code).Equal(http.StatusNotFound)

	uc.add(&model.Timeline{ID: "old", Query: "old"})
	uc.add(&model.Timeline{ID: "new", Query: "new"})

	w = do(t, s, http.MethodGet, "/api/timelines/latest", "")
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"id":"new"`)
}

func TestListTimelines(t *testing.T) {
	uc := newMockUC()
	for _, id := range []model.TimelineID{"a", "b", "c"} {
		uc.add(&model.Timeline{ID: id, Query: string(id), Entries: []*model.Entry{{}, {}}})
	}
	s := server.New(uc, server.WithListLimit(2))

	w := do(t, s, http.MethodGet, "/api/timelines", "")
	gt.Number(t, w.Code).Equal(http.StatusOK)

	var resp struct {
		Timelines []struct {
			ID      string `json:"id"`
			Entries int    `json:"entries"`
		} `json:"timelines"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
	gt.Array(t, resp.Timelines).Length(2).Required()
	gt.String(t, resp.Timelines[0].ID).Equal("c")
	gt.Number(t, resp.Timelines[0].Entries).Equal(2)

	w = do(t, s, http.MethodGet, "/api/timelines?limit=3", "")
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
	gt.Array(t, resp.Timelines).Length(3)

	w = do(t, s, http.MethodGet, "/api/timelines?limit=zero", "")
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
}
