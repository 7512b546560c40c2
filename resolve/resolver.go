package resolve

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/extract"
	"github.com/Hufamily/ThirdEye-sub000/fusion"
	"github.com/Hufamily/ThirdEye-sub000/internal/metrics"
	"github.com/Hufamily/ThirdEye-sub000/locate"
	"github.com/Hufamily/ThirdEye-sub000/snapshot"
	"github.com/Hufamily/ThirdEye-sub000/track"
	"github.com/Hufamily/ThirdEye-sub000/types"
	"github.com/Hufamily/ThirdEye-sub000/vision"
)

// Request carries everything needed to resolve one attention point.
type Request struct {
	// Snapshot is the page state under the point.
	Snapshot *document.Snapshot
	// Point is the attention point in logical page pixels.
	Point types.Point
	// Screenshot is an optional full-viewport capture as a base64 data
	// URL; without it the OCR fallback cannot engage.
	Screenshot string
	// ClientText is a client-side extraction. It substitutes for the
	// assembled DOM text when it carries more usable content.
	ClientText string
	// ContextLines overrides the configured neighbor-window sizes when
	// positive.
	ContextLines int
}

// Result is the attributed outcome of one resolution.
type Result struct {
	ExtractedText    string             `json:"extracted_text"`
	TextSource       types.FusionSource `json:"text_source"`
	ScreenshotUsed   bool               `json:"screenshot_used"`
	VisionConfidence float64            `json:"vision_confidence,omitempty"`
	ContentTypes     []string           `json:"content_types_detected,omitempty"`
	RendererKind     types.RendererKind `json:"renderer_kind"`
	SourceURL        string             `json:"source_url"`
	CacheHit         bool               `json:"-"`
	RegionKey        track.RegionKey    `json:"-"`
}

// Resolver wires the pipeline stages together.
type Resolver struct {
	cfg       config.ExtractConfig
	grid      float64
	chain     *locate.Chain
	assembler *extract.Assembler
	cropper   *snapshot.Cropper
	vision    vision.Client
	cache     *fusion.Cache
	collector *metrics.Collector
	logger    *zap.Logger
}

// NewResolver creates a resolver. visionClient may be vision.Nop{};
// collector may be nil when metrics are not wired; a nil logger is
// replaced with a nop logger.
func NewResolver(
	cfg *config.Config,
	visionClient vision.Client,
	cache *fusion.Cache,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		cfg:       cfg.Extract,
		grid:      cfg.Tracker.CooldownGrid,
		chain:     locate.NewChain(logger),
		assembler: extract.NewAssembler(cfg.Extract, logger),
		cropper:   snapshot.NewCropper(cfg.Snapshot, logger),
		vision:    visionClient,
		cache:     cache,
		collector: collector,
		logger:    logger.With(zap.String("component", "resolver")),
	}
}

// Resolve runs the full pipeline. It never returns an error for pipeline
// degradation; the weakest valid outcome is the page title attributed to
// the DOM source.
func (r *Resolver) Resolve(ctx context.Context, req Request) *Result {
	region := r.chain.Resolve(req.Snapshot, req.Point)
	r.recordLocate(region)

	assembler := r.assembler
	if req.ContextLines > 0 {
		cfg := r.cfg
		cfg.ParagraphWindow = req.ContextLines
		cfg.LineWindow = req.ContextLines
		assembler = extract.NewAssembler(cfg, r.logger)
	}
	extraction := assembler.Assemble(req.Snapshot, region, req.Point)
	if r.collector != nil {
		r.collector.RecordExtractionLength(len(extraction.Text))
	}

	domText := extraction.Text
	if extract.UsableLength(domText) < r.cfg.MinUsableLength &&
		extract.UsableLength(req.ClientText) > extract.UsableLength(domText) {
		domText = req.ClientText
	}

	result := &Result{
		ExtractedText: domText,
		TextSource:    types.FusionSourceDOM,
		RendererKind:  region.Kind,
		SourceURL:     req.Snapshot.URL,
		RegionKey:     regionKey(region, req.Point, r.grid, domText),
	}

	if extract.UsableLength(domText) >= r.cfg.MinUsableLength {
		return result
	}

	// DOM text is thin; try the raster fallback.
	entry, hit := r.fuseWithVision(ctx, req, domText)
	if entry == nil {
		return result
	}

	result.ExtractedText = entry.MergedText
	result.TextSource = entry.SourceLabel
	result.ScreenshotUsed = true
	result.CacheHit = hit
	result.VisionConfidence = entry.Confidence
	result.ContentTypes = entry.ContentTypes
	if r.collector != nil {
		r.collector.RecordFusion(string(entry.SourceLabel), hit)
	}
	return result
}

// fuseWithVision crops the screenshot, fingerprints the crop, and runs
// the fusion cache. Any failure along the way degrades to a nil entry and
// the caller keeps the DOM-only result.
func (r *Resolver) fuseWithVision(ctx context.Context, req Request, domText string) (*types.VisionCacheEntry, bool) {
	if req.Screenshot == "" || r.cache == nil {
		return nil, false
	}

	img, err := snapshot.DecodeDataURL(req.Screenshot)
	if err != nil {
		r.logger.Debug("screenshot decode failed", zap.Error(err))
		return nil, false
	}

	crop, err := r.cropper.Crop(img, req.Snapshot.ViewportWidth, req.Point)
	if err != nil {
		r.logger.Debug("snapshot crop failed", zap.Error(err))
		return nil, false
	}

	fingerprint := snapshot.Fingerprint(crop.Data)

	var visionFn func(ctx context.Context) (*types.VisionResult, error)
	if r.vision != nil && r.vision.Available() {
		dataURL := crop.DataURL()
		visionFn = func(ctx context.Context) (*types.VisionResult, error) {
			start := time.Now()
			vr, err := r.vision.Analyze(ctx, dataURL)
			if r.collector != nil {
				r.collector.RecordVisionCall(time.Since(start), err != nil)
			}
			return vr, err
		}
	}

	entry, hit, err := r.cache.Resolve(ctx, fingerprint, domText, visionFn)
	if err != nil {
		r.logger.Warn("fusion resolve failed", zap.Error(err))
		return nil, false
	}
	return entry, hit
}

func (r *Resolver) recordLocate(region *locate.Region) {
	if r.collector == nil {
		return
	}
	outcome := "region"
	if region.WholePage {
		outcome = "whole_page"
	}
	r.collector.RecordLocate(string(region.Kind), outcome)
}

// regionKey derives the cooldown identity of a resolution: the stable
// node reference when one exists, otherwise a quantized position plus
// text prefix, since canvas and PDF renderers have no stable nodes.
func regionKey(region *locate.Region, p types.Point, grid float64, text string) track.RegionKey {
	if region.Node != nil && region.Kind == types.RendererGenericHTML {
		return track.NodeRegionKey(region.Node.ID)
	}
	return track.QuantizedRegionKey(p, grid, text)
}
