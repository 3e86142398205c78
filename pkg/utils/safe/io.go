package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. nil is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("close failed", slog.Any("error", err))
	}
}

// Write writes data to w and logs a failure. Used once a response status has
// already been sent and the error can no longer reach the caller.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("write failed", slog.Any("error", err), slog.Int("size", len(data)))
	}
}

// ReadAll reads at most limit bytes from rc and closes it. Anything beyond
// limit is discarded so the underlying connection can be reused.
func ReadAll(ctx context.Context, rc io.ReadCloser, limit int64) ([]byte, error) {
	if rc == nil {
		return nil, nil
	}
	defer Close(ctx, rc)

	data, err := io.ReadAll(io.LimitReader(rc, limit))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read body", goerr.V("limit", limit))
	}
	if _, err := io.Copy(io.Discard, rc); err != nil {
		logging.From(ctx).Debug("failed to drain body", slog.Any("error", err))
	}
	return data, nil
}
