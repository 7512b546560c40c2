package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// analyzeRequest is the wire format sent to the vision endpoint.
type analyzeRequest struct {
	Image string `json:"image"`
}

// analyzeResponse is the wire format returned by the vision endpoint.
type analyzeResponse struct {
	Text         string   `json:"text"`
	Confidence   float64  `json:"confidence"`
	ContentTypes []string `json:"content_types,omitempty"`
}

// HTTPClient calls a server-side vision endpoint.
type HTTPClient struct {
	cfg     config.VisionConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	mu       sync.Mutex
	failures int
	disabled bool
}

// NewHTTPClient creates a vision client. A nil logger is replaced with a
// nop logger.
func NewHTTPClient(cfg config.VisionConfig, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  logger.With(zap.String("component", "vision_client")),
	}
}

// Available implements Client.
func (c *HTTPClient) Available() bool {
	if c.cfg.Endpoint == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.disabled
}

// Analyze implements Client. The call is bounded by both the context and
// the configured timeout; rate limiting waits within those bounds.
func (c *HTTPClient) Analyze(ctx context.Context, imageDataURL string) (*types.VisionResult, error) {
	if !c.Available() {
		return nil, types.NewError(types.ErrVisionFailed, "vision endpoint unavailable")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, types.NewError(types.ErrTimeout, "vision rate limit wait").WithCause(err).WithRetryable(true)
	}

	body, err := json.Marshal(analyzeRequest{Image: imageDataURL})
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "marshal vision request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "build vision request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure(err)
		return nil, types.NewError(types.ErrVisionFailed, "vision call failed").WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := types.NewError(types.ErrVisionFailed, "vision endpoint returned non-200").
			WithHTTPStatus(resp.StatusCode)
		c.recordFailure(err)
		return nil, err
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.recordFailure(err)
		return nil, types.NewError(types.ErrVisionFailed, "decode vision response").WithCause(err)
	}

	c.mu.Lock()
	c.failures = 0
	c.mu.Unlock()

	return &types.VisionResult{
		Text:         decoded.Text,
		Confidence:   decoded.Confidence,
		ContentTypes: decoded.ContentTypes,
	}, nil
}

func (c *HTTPClient) recordFailure(err error) {
	c.mu.Lock()
	c.failures++
	failures := c.failures
	disable := failures >= c.cfg.MaxFailures && !c.disabled
	if disable {
		c.disabled = true
	}
	c.mu.Unlock()

	if disable {
		c.logger.Warn("vision endpoint disabled for this session",
			zap.Int("consecutive_failures", failures),
			zap.Error(err))
		return
	}
	c.logger.Debug("vision call failed", zap.Int("consecutive_failures", failures), zap.Error(err))
}
