package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

type timelineRepository struct {
	mu        sync.RWMutex
	timelines map[model.TimelineID]*model.Timeline
}

func newTimelineRepository() *timelineRepository {
	return &timelineRepository{
		timelines: make(map[model.TimelineID]*model.Timeline),
	}
}

// copyTimeline creates a deep copy of a timeline
func copyTimeline(t *model.Timeline) *model.Timeline {
	copied := &model.Timeline{
		ID:        t.ID,
		Query:     t.Query,
		CreatedAt: t.CreatedAt,
	}

	if t.Entries != nil {
		copied.Entries = make([]*model.Entry, len(t.Entries))
		for i, e := range t.Entries {
			copied.Entries[i] = copyEntry(e)
		}
	}
	return copied
}

func copyEntry(e *model.Entry) *model.Entry {
	copied := &model.Entry{
		Milestone:  e.Milestone,
		Confidence: e.Confidence,
		Notes:      e.Notes,
	}
	if e.Date != nil {
		copied.Date = e.Date.Ptr()
	}
	if e.Sources != nil {
		copied.Sources = make([]string, len(e.Sources))
		copy(copied.Sources, e.Sources)
	}
	if e.SupportingStatements != nil {
		copied.SupportingStatements = make([]model.SupportingStatement, len(e.SupportingStatements))
		copy(copied.SupportingStatements, e.SupportingStatements)
	}
	return copied
}

func (r *timelineRepository) Put(ctx context.Context, timeline *model.Timeline) error {
	if timeline == nil || timeline.ID == "" {
		return goerr.Wrap(model.ErrInvalidInput, "timeline ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.timelines[timeline.ID] = copyTimeline(timeline)
	return nil
}

func (r *timelineRepository) Get(ctx context.Context, id model.TimelineID) (*model.Timeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	timeline, exists := r.timelines[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrTimelineNotFound, "timeline not found", goerr.V(model.TimelineIDKey, id))
	}

	return copyTimeline(timeline), nil
}

func (r *timelineRepository) Latest(ctx context.Context) (*model.Timeline, error) {
	list, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, goerr.Wrap(model.ErrTimelineNotFound, "no timeline stored")
	}
	return list[0], nil
}

func (r *timelineRepository) List(ctx context.Context, limit int) ([]*model.Timeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Timeline, 0, len(r.timelines))
	for _, t := range r.timelines {
		result = append(result, t)
	}

	// Newest first, ID as tie-breaker for a stable order
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	for i, t := range result {
		result[i] = copyTimeline(t)
	}
	return result, nil
}
