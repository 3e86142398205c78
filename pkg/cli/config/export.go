package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/export"
	"github.com/secmon-lab/chronicle/pkg/service/storage"
	"github.com/urfave/cli/v3"
)

// Export holds CLI flags for publishing built timelines
type Export struct {
	format    string
	dir       string
	gcsBucket string
	gcsPrefix string
}

// Flags returns CLI flags for export configuration
func (x *Export) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-format",
			Usage:       "Format of exported timelines (json, yaml or markdown)",
			Category:    "Export",
			Value:       string(export.FormatJSON),
			Sources:     cli.EnvVars("CHRONICLE_EXPORT_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "export-dir",
			Usage:       "Directory to write exported timelines to",
			Category:    "Export",
			Sources:     cli.EnvVars("CHRONICLE_EXPORT_DIR"),
			Destination: &x.dir,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket to upload exported timelines to",
			Category:    "Export",
			Sources:     cli.EnvVars("CHRONICLE_GCS_BUCKET"),
			Destination: &x.gcsBucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix in the Cloud Storage bucket",
			Category:    "Export",
			Sources:     cli.EnvVars("CHRONICLE_GCS_PREFIX"),
			Destination: &x.gcsPrefix,
		},
	}
}

func (x Export) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("format", x.format),
		slog.String("dir", x.dir),
		slog.String("gcs_bucket", x.gcsBucket),
		slog.String("gcs_prefix", x.gcsPrefix),
	)
}

// Configure creates the exporter. Cloud Storage takes precedence over a local
// directory. Returns nil if neither is configured.
func (x *Export) Configure(ctx context.Context) (interfaces.Exporter, error) {
	format, err := export.ParseFormat(x.format)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid export format")
	}

	switch {
	case x.gcsBucket != "":
		opts := []storage.Option{storage.WithFormat(format)}
		if x.gcsPrefix != "" {
			opts = append(opts, storage.WithPrefix(x.gcsPrefix))
		}
		gcs, err := storage.NewGCS(ctx, x.gcsBucket, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Cloud Storage exporter")
		}
		return gcs, nil

	case x.dir != "":
		return storage.NewFile(x.dir, format), nil

	default:
		return nil, nil
	}
}
