package cli

import (
	"context"
	"io"
)

// RunWithWriter runs the app with command output captured by w
func RunWithWriter(ctx context.Context, args []string, w io.Writer) error {
	return run(ctx, args, "test", w)
}
