package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/redactyl/piiscan/internal/engine"
	"github.com/redactyl/piiscan/internal/policy"
	"github.com/redactyl/piiscan/internal/report"
	"github.com/redactyl/piiscan/internal/types"
)

// DefaultMaxBodyBytes bounds the size of a scan request body.
const DefaultMaxBodyBytes = 8 << 20

// Options configures the HTTP handlers.
type Options struct {
	Detector engine.Detector
	// Profile is used when a request carries no policy fields of its own.
	Profile          policy.Profile
	DefaultThreshold float64
	MaxBodyBytes     int64
	Logger           *slog.Logger
	Version          string
}

// ScanRequest is the body of POST /v1/scan. Text is required but may be empty.
// When BlockedLabels or Thresholds is present the request describes its own
// policy instead of the server default.
type ScanRequest struct {
	Text             *string            `json:"text" binding:"required"`
	Floor            *float64           `json:"floor,omitempty"`
	DefaultThreshold *float64           `json:"default_threshold,omitempty"`
	BlockedLabels    []string           `json:"blocked_labels,omitempty"`
	Thresholds       map[string]float64 `json:"thresholds,omitempty"`
}

// LabelInfo is one entry of GET /v1/labels.
type LabelInfo struct {
	Label  types.Label `json:"label"`
	Weight float64     `json:"weight"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the gin engine serving the scan API.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	h := &handlers{opts: opts}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger))
	r.GET("/healthz", h.health)
	v1 := r.Group("/v1")
	v1.GET("/labels", h.labels)
	v1.POST("/scan", limitBody(opts.MaxBodyBytes), h.scan)
	return r
}

type handlers struct {
	opts Options
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.opts.Version})
}

func (h *handlers) labels(c *gin.Context) {
	defs := h.opts.Detector.Library.Definitions()
	out := make([]LabelInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, LabelInfo{Label: d.Label, Weight: d.Weight})
	}
	c.JSON(http.StatusOK, gin.H{"labels": out})
}

func (h *handlers) scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	profile, err := h.profileFor(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	floor := 0.0
	if req.Floor != nil {
		floor = *req.Floor
	}
	findings := h.opts.Detector.ScanText(*req.Text, floor)
	res := policy.Result(findings, profile)
	h.opts.Logger.Debug("text scanned",
		"bytes", len(*req.Text),
		"findings", len(res.Findings),
		"violations", len(res.Violations),
		"result", res.Decision)
	c.JSON(http.StatusOK, report.NewDocument(res))
}

func (h *handlers) profileFor(req ScanRequest) (policy.Profile, error) {
	th := h.opts.DefaultThreshold
	if req.DefaultThreshold != nil {
		th = *req.DefaultThreshold
		if th < 0 {
			return policy.Profile{}, fmt.Errorf("%w: default_threshold: threshold %v must be a non-negative number", policy.ErrMalformed, th)
		}
	}
	if req.BlockedLabels == nil && req.Thresholds == nil {
		p := h.opts.Profile
		if p.BlockedLabels == nil && p.Thresholds == nil {
			p = policy.Default(th)
		}
		if req.DefaultThreshold != nil {
			p.DefaultThreshold = th
		}
		return p, nil
	}
	doc := policy.Document{
		BlockedLabels:    req.BlockedLabels,
		Thresholds:       req.Thresholds,
		DefaultThreshold: req.DefaultThreshold,
	}
	return doc.Profile(th)
}

// limitBody caps the request body so oversized payloads fail to bind.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// RequestIDHeader carries the request ID. A client-supplied value is kept.
const RequestIDHeader = "X-Request-ID"

// requestLogger tags each request with an ID and logs one line per request
// through slog.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Next()
		log.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
