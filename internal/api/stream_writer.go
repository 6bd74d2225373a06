package api

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/calibkit/internal/collate"
)

// NDJSONWriter writes one JSON value per line and flushes after each.
type NDJSONWriter struct {
	enc     *json.Encoder
	flusher func()
	lines   int
}

// NewNDJSONWriter writes to w; flush may be nil.
func NewNDJSONWriter(w io.Writer, flush func()) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w), flusher: flush}
}

// NewHTTPNDJSONWriter prepares the echo response for streaming.
func NewHTTPNDJSONWriter(c *echo.Context) (*NDJSONWriter, error) {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	res.Header().Set("Cache-Control", "no-cache")

	flusher, ok := res.(interface{ Flush() })
	if !ok {
		return nil, fmt.Errorf("streaming unsupported")
	}
	return NewNDJSONWriter(res, flusher.Flush), nil
}

// WriteBatch writes b, or a null line when b is nil.
func (w *NDJSONWriter) WriteBatch(b *collate.Batch) error {
	if err := w.enc.Encode(b); err != nil {
		return err
	}
	w.lines++
	w.flush()
	return nil
}

// Lines returns how many lines have been written.
func (w *NDJSONWriter) Lines() int { return w.lines }

func (w *NDJSONWriter) flush() {
	if w.flusher != nil {
		w.flusher()
	}
}
