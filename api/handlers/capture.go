package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/api"
	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/internal/metrics"
	"github.com/Hufamily/ThirdEye-sub000/resolve"
	"github.com/Hufamily/ThirdEye-sub000/track"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// CaptureHandler resolves attention points against page snapshots.
type CaptureHandler struct {
	resolver  *resolve.Resolver
	sessions  *track.Manager
	search    SearchSink
	collector *metrics.Collector
	logger    *zap.Logger
}

// NewCaptureHandler creates a capture handler. sessions may be nil when
// the server runs without the tracking surface; cooldown suppression is
// then skipped. search may be nil to drop outbound search events.
func NewCaptureHandler(resolver *resolve.Resolver, sessions *track.Manager, search SearchSink, collector *metrics.Collector, logger *zap.Logger) *CaptureHandler {
	return &CaptureHandler{
		resolver:  resolver,
		sessions:  sessions,
		search:    search,
		collector: collector,
		logger:    logger,
	}
}

// HandleCapture serves POST /v1/capture.
func (h *CaptureHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.CaptureRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if err := h.validateCaptureRequest(&req); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	snap := req.Snapshot
	if snap.URL == "" {
		snap.URL = req.URL
	}
	if len(snap.Nodes) == 0 && req.HTML != "" {
		if parsed, err := document.ParseHTML(snap.URL, strings.NewReader(req.HTML)); err != nil {
			h.logger.Debug("html parse failed", zap.Error(err))
		} else {
			parsed.ViewportWidth = snap.ViewportWidth
			parsed.ViewportHeight = snap.ViewportHeight
			parsed.Kind = snap.Kind
			snap = *parsed
		}
	}
	snap.Kind = document.DetectKind(&snap)

	start := time.Now()
	result := h.resolver.Resolve(r.Context(), resolve.Request{
		Snapshot:     &snap,
		Point:        types.Point{X: req.CursorPosition.X, Y: req.CursorPosition.Y},
		Screenshot:   req.Screenshot,
		ClientText:   req.TextExtraction,
		ContextLines: req.ContextLines,
	})
	duration := time.Since(start)

	resp := &api.CaptureResponse{
		ExtractedText:        result.ExtractedText,
		TextSource:           result.TextSource,
		ScreenshotUsed:       result.ScreenshotUsed,
		VisionConfidence:     result.VisionConfidence,
		ContentTypesDetected: result.ContentTypes,
		RendererKind:         result.RendererKind,
		Metadata: api.CaptureMetadata{
			SourceURL:  result.SourceURL,
			Title:      snap.Title,
			CapturedAt: time.Now(),
			CacheHit:   result.CacheHit,
		},
	}

	switch {
	case h.stale(req.SessionID, req.Epoch):
		resp.Metadata.Stale = true
	case h.suppressed(req.SessionID, result.RegionKey):
		resp.ExtractedText = ""
		resp.Metadata.Suppressed = true
		if h.collector != nil {
			h.collector.RecordCooldownDrop()
		}
	default:
		if h.search != nil && resp.ExtractedText != "" {
			h.search.PushSearch(req.SessionID, &api.SearchFrame{
				Query:                resp.ExtractedText,
				TextSource:           result.TextSource,
				ScreenshotUsed:       result.ScreenshotUsed,
				VisionConfidence:     result.VisionConfidence,
				ContentTypesDetected: result.ContentTypes,
				SourceURL:            result.SourceURL,
			})
		}
	}

	h.logger.Info("capture resolved",
		zap.String("session_id", req.SessionID),
		zap.String("renderer", string(result.RendererKind)),
		zap.String("source", string(result.TextSource)),
		zap.Int("text_length", len(resp.ExtractedText)),
		zap.Bool("screenshot_used", result.ScreenshotUsed),
		zap.Bool("suppressed", resp.Metadata.Suppressed),
		zap.Duration("duration", duration),
	)

	WriteSuccess(w, resp)
}

// stale reports whether the session fired a newer attention event than
// the one this capture echoes. A zero epoch opts out of the check for
// clients that do not track events.
func (h *CaptureHandler) stale(sessionID string, epoch uint64) bool {
	if h.sessions == nil || sessionID == "" || epoch == 0 {
		return false
	}
	tracker := h.sessions.Get(sessionID)
	if tracker == nil {
		return false
	}
	return tracker.CurrentEpoch() > epoch
}

// suppressed consults the session's cooldown registry. The same region
// resolving twice inside the window yields a suppressed response.
func (h *CaptureHandler) suppressed(sessionID string, key track.RegionKey) bool {
	if h.sessions == nil || sessionID == "" || key == "" {
		return false
	}
	tracker := h.sessions.Get(sessionID)
	if tracker == nil {
		return false
	}
	return !tracker.Cooldown().Allow(key, time.Now())
}

func (h *CaptureHandler) validateCaptureRequest(req *api.CaptureRequest) *types.Error {
	if req.URL == "" && req.Snapshot.URL == "" {
		return types.NewError(types.ErrInvalidRequest, "url is required")
	}
	if len(req.Snapshot.Nodes) == 0 && req.Screenshot == "" && req.HTML == "" && req.TextExtraction == "" {
		return types.NewError(types.ErrInvalidRequest, "snapshot nodes, html, text_extraction or screenshot required")
	}
	return nil
}
