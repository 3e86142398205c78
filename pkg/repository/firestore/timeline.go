package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// timelineDoc is the Firestore document representation of model.Timeline.
// Dates are stored as ISO strings so that undated entries survive as "".
type timelineDoc struct {
	ID        string     `firestore:"ID"`
	Query     string     `firestore:"Query"`
	CreatedAt time.Time  `firestore:"CreatedAt"`
	Entries   []entryDoc `firestore:"Entries"`
}

type entryDoc struct {
	Date                 string         `firestore:"Date"`
	Milestone            string         `firestore:"Milestone"`
	Confidence           float64        `firestore:"Confidence"`
	Sources              []string       `firestore:"Sources"`
	Notes                string         `firestore:"Notes"`
	SupportingStatements []statementDoc `firestore:"SupportingStatements"`
}

type statementDoc struct {
	Text       string `firestore:"Text"`
	SourceName string `firestore:"SourceName"`
	URL        string `firestore:"URL"`
}

func toTimelineDoc(t *model.Timeline) *timelineDoc {
	doc := &timelineDoc{
		ID:        string(t.ID),
		Query:     t.Query,
		CreatedAt: t.CreatedAt,
		Entries:   make([]entryDoc, 0, len(t.Entries)),
	}

	for _, e := range t.Entries {
		ed := entryDoc{
			Milestone:            e.Milestone,
			Confidence:           e.Confidence,
			Sources:              e.Sources,
			Notes:                e.Notes,
			SupportingStatements: make([]statementDoc, 0, len(e.SupportingStatements)),
		}
		if e.Date != nil {
			ed.Date = e.Date.String()
		}
		if ed.Sources == nil {
			ed.Sources = []string{}
		}
		for _, s := range e.SupportingStatements {
			ed.SupportingStatements = append(ed.SupportingStatements, statementDoc(s))
		}
		doc.Entries = append(doc.Entries, ed)
	}
	return doc
}

func fromTimelineDoc(d *timelineDoc) (*model.Timeline, error) {
	t := &model.Timeline{
		ID:        model.TimelineID(d.ID),
		Query:     d.Query,
		CreatedAt: d.CreatedAt,
		Entries:   make([]*model.Entry, 0, len(d.Entries)),
	}

	for _, ed := range d.Entries {
		e := &model.Entry{
			Milestone:            ed.Milestone,
			Confidence:           ed.Confidence,
			Sources:              ed.Sources,
			Notes:                ed.Notes,
			SupportingStatements: make([]model.SupportingStatement, 0, len(ed.SupportingStatements)),
		}
		if ed.Date != "" {
			date, err := model.ParseDate(ed.Date)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid entry date", goerr.V("date", ed.Date))
			}
			e.Date = &date
		}
		if e.Sources == nil {
			e.Sources = []string{}
		}
		for _, s := range ed.SupportingStatements {
			e.SupportingStatements = append(e.SupportingStatements, model.SupportingStatement(s))
		}
		t.Entries = append(t.Entries, e)
	}
	return t, nil
}

func docToTimeline(doc *firestore.DocumentSnapshot) (*model.Timeline, error) {
	var d timelineDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromTimelineDoc(&d)
}

type timelineRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTimelineRepository(client *firestore.Client) *timelineRepository {
	return &timelineRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *timelineRepository) collectionName() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_timelines"
	}
	return "timelines"
}

func (r *timelineRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionName())
}

func (r *timelineRepository) Put(ctx context.Context, timeline *model.Timeline) error {
	if timeline == nil || timeline.ID == "" {
		return goerr.Wrap(model.ErrInvalidInput, "timeline ID is required")
	}

	docRef := r.collection().Doc(string(timeline.ID))
	if _, err := docRef.Set(ctx, toTimelineDoc(timeline)); err != nil {
		return goerr.Wrap(err, "failed to put timeline", goerr.V(model.TimelineIDKey, timeline.ID))
	}
	return nil
}

func (r *timelineRepository) Get(ctx context.Context, id model.TimelineID) (*model.Timeline, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrTimelineNotFound, "timeline not found", goerr.V(model.TimelineIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get timeline", goerr.V(model.TimelineIDKey, id))
	}

	t, err := docToTimeline(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal timeline", goerr.V(model.TimelineIDKey, id))
	}
	return t, nil
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
	query := r.collection().OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	timelines := make([]*model.Timeline, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate timelines")
		}

		t, err := docToTimeline(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal timeline", goerr.V("doc_id", doc.Ref.ID))
		}
		timelines = append(timelines, t)
	}

	return timelines, nil
}
