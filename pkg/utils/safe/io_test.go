package safe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
)

type failingCloser struct{ closed bool }

func (c *failingCloser) Close() error {
	c.closed = true
	return errors.New("already closed")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func TestClose(t *testing.T) {
	c := &failingCloser{}
	safe.Close(context.Background(), c)
	gt.Bool(t, c.closed).True()

	// nil closer is ignored
	safe.Close(context.Background(), nil)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	safe.Write(context.Background(), &buf, []byte("hello"))
	gt.String(t, buf.String()).Equal("hello")

	safe.Write(context.Background(), failingWriter{}, []byte("ignored"))
	safe.Write(context.Background(), nil, []byte("ignored"))
}

func TestReadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("reads whole body", func(t *testing.T) {
		body := &trackedBody{Reader: strings.NewReader(`{"ok":true}`)}
		data, err := safe.ReadAll(ctx, body, 1024)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Equal(`{"ok":true}`)
		gt.Bool(t, body.closed).True()
	})

	t.Run("truncates at limit", func(t *testing.T) {
		body := &trackedBody{Reader: strings.NewReader("abcdefgh")}
		data, err := safe.ReadAll(ctx, body, 3)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Equal("abc")
		gt.Bool(t, body.closed).True()
	})

	t.Run("nil body", func(t *testing.T) {
		data, err := safe.ReadAll(ctx, nil, 10)
		gt.NoError(t, err)
		gt.Array(t, data).Length(0)
	})
}
