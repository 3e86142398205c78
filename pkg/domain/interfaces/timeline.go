package interfaces

import (
	"context"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// TimelineRepository defines the interface for Timeline persistence. It caches
// completed timelines for re-display; stored timelines are only put or replaced.
type TimelineRepository interface {
	// Put stores the timeline, replacing any timeline with the same ID
	Put(ctx context.Context, timeline *model.Timeline) error

	// Get retrieves a timeline by ID. Returns model.ErrTimelineNotFound if absent.
	Get(ctx context.Context, id model.TimelineID) (*model.Timeline, error)

	// Latest retrieves the most recently created timeline. Returns
	// model.ErrTimelineNotFound if nothing is stored.
	Latest(ctx context.Context) (*model.Timeline, error)

	// List returns up to limit timelines, newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*model.Timeline, error)
}
