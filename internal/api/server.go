// Package api serves a built calibration corpus over HTTP.
package api

import (
	"iter"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/calibkit/internal/calib"
	"github.com/samcharles93/calibkit/internal/collate"
	"github.com/samcharles93/calibkit/internal/logger"
	"github.com/samcharles93/calibkit/internal/version"
)

// BatchSource is what the server exposes; *calib.Dataloader satisfies it.
type BatchSource interface {
	Manifest() calib.Manifest
	Batches() iter.Seq2[*collate.Batch, error]
}

type Server struct {
	source  BatchSource
	log     logger.Logger
	clock   func() time.Time
	started time.Time
}

func NewServer(source BatchSource, log logger.Logger) *Server {
	s := &Server{
		source: source,
		log:    logger.OrDiscard(log),
		clock:  time.Now,
	}
	s.started = s.clock()
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/manifest", s.handleManifest)
	e.GET("/v1/batches", s.handleBatches)
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: version.String(),
		Uptime:  s.clock().Sub(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleManifest(c *echo.Context) error {
	if s.source == nil {
		return writeError(c, http.StatusServiceUnavailable, "server_error", "no corpus loaded", "")
	}
	return c.JSON(http.StatusOK, s.source.Manifest())
}

// handleBatches streams batches as NDJSON. Query parameters: skip_empty drops
// batches whose samples were all filtered out; limit caps the line count.
func (s *Server) handleBatches(c *echo.Context) error {
	if s.source == nil {
		return writeError(c, http.StatusServiceUnavailable, "server_error", "no corpus loaded", "")
	}
	limit, hasLimit, err := queryInt(c, "limit")
	if err != nil {
		return writeBadRequest(c, err.Error(), errorParam(err))
	}
	skipEmpty := queryBool(c, "skip_empty")

	w, err := NewHTTPNDJSONWriter(c)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
	ctx := c.Request().Context()
	c.Response().WriteHeader(http.StatusOK)

	for b, err := range s.source.Batches() {
		if err != nil {
			// Headers are gone; the client sees a truncated stream.
			s.log.Error("batch stream failed", "error", err, "lines", w.Lines())
			return nil
		}
		if ctx.Err() != nil {
			s.log.Debug("client went away", "lines", w.Lines())
			return nil
		}
		if hasLimit && w.Lines() >= limit {
			break
		}
		if b == nil && skipEmpty {
			continue
		}
		if err := w.WriteBatch(b); err != nil {
			s.log.Warn("write batch", "error", err)
			return nil
		}
	}
	s.log.Info("served batches", "lines", w.Lines(), "run_id", s.source.Manifest().RunID)
	return nil
}
