package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
)

type timelineRepository struct {
	db *sql.DB
	mu *sync.RWMutex
}

func (r *timelineRepository) Put(ctx context.Context, timeline *model.Timeline) error {
	if timeline == nil || timeline.ID == "" {
		return goerr.Wrap(model.ErrInvalidInput, "timeline ID is required")
	}

	body, err := json.Marshal(timeline)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal timeline", goerr.V(model.TimelineIDKey, timeline.ID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO timelines (id, query, created_at, body) VALUES (?, ?, ?, ?)`,
		string(timeline.ID), timeline.Query, timeline.CreatedAt.UnixNano(), string(body))
	if err != nil {
		return goerr.Wrap(err, "failed to put timeline", goerr.V(model.TimelineIDKey, timeline.ID))
	}
	return nil
}

func (r *timelineRepository) Get(ctx context.Context, id model.TimelineID) (*model.Timeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM timelines WHERE id = ?`, string(id)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrTimelineNotFound, "timeline not found", goerr.V(model.TimelineIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get timeline", goerr.V(model.TimelineIDKey, id))
	}

	return decodeTimeline(body)
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

	// LIMIT -1 means no limit in SQLite
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT body FROM timelines ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query timelines")
	}
	defer safe.Close(ctx, rows)

	timelines := make([]*model.Timeline, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, goerr.Wrap(err, "failed to scan timeline")
		}
		t, err := decodeTimeline(body)
		if err != nil {
			return nil, err
		}
		timelines = append(timelines, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate timelines")
	}

	return timelines, nil
}

func decodeTimeline(body string) (*model.Timeline, error) {
	var t model.Timeline
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal timeline")
	}
	return &t, nil
}
