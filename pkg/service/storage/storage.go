package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/export"
)

// Uploader writes one object to a bucket
type Uploader interface {
	Upload(ctx context.Context, bucket, object, contentType string, data []byte) error
}

// GCS exports timelines to gs://bucket/prefix/<id>.<ext>
type GCS struct {
	uploader Uploader
	bucket   string
	prefix   string
	format   export.Format
}

var _ interfaces.Exporter = &GCS{}

type Option func(*GCS)

func WithPrefix(prefix string) Option {
	return func(g *GCS) {
		g.prefix = strings.Trim(prefix, "/")
	}
}

func WithFormat(format export.Format) Option {
	return func(g *GCS) {
		g.format = format
	}
}

// WithUploader replaces the Cloud Storage client
func WithUploader(uploader Uploader) Option {
	return func(g *GCS) {
		g.uploader = uploader
	}
}

// NewGCS creates a GCS exporter. A Cloud Storage client is created from
// application default credentials unless WithUploader is given.
func NewGCS(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	g := &GCS{
		bucket: bucket,
		format: export.FormatJSON,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.uploader == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create cloud storage client")
		}
		g.uploader = &gcsUploader{client: client}
	}
	return g, nil
}

// ObjectName returns the object path of a timeline
func (g *GCS) ObjectName(id model.TimelineID) string {
	name := fmt.Sprintf("%s.%s", id, g.format.Extension())
	if g.prefix == "" {
		return name
	}
	return path.Join(g.prefix, name)
}

func (g *GCS) Export(ctx context.Context, timeline *model.Timeline) (string, error) {
	data, err := export.Marshal(timeline, g.format)
	if err != nil {
		return "", err
	}

	object := g.ObjectName(timeline.ID)
	if err := g.uploader.Upload(ctx, g.bucket, object, g.format.ContentType(), data); err != nil {
		return "", goerr.Wrap(err, "failed to upload timeline",
			goerr.V("bucket", g.bucket),
			goerr.V("object", object),
			goerr.V(model.TimelineIDKey, timeline.ID))
	}

	return fmt.Sprintf("gs://%s/%s", g.bucket, object), nil
}

type gcsUploader struct {
	client *storage.Client
}

func (u *gcsUploader) Upload(ctx context.Context, bucket, object, contentType string, data []byte) error {
	w := u.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object")
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close object writer")
	}
	return nil
}

// File exports timelines into a local directory
type File struct {
	dir    string
	format export.Format
}

var _ interfaces.Exporter = &File{}

func NewFile(dir string, format export.Format) *File {
	return &File{dir: dir, format: format}
}

func (f *File) Export(ctx context.Context, timeline *model.Timeline) (string, error) {
	data, err := export.Marshal(timeline, f.format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create export directory", goerr.V("dir", f.dir))
	}

	p := filepath.Join(f.dir, fmt.Sprintf("%s.%s", timeline.ID, f.format.Extension()))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", goerr.Wrap(err, "failed to write timeline file", goerr.V("path", p))
	}
	return p, nil
}
