package vision

import (
	"context"

	"github.com/Hufamily/ThirdEye-sub000/types"
)

// Client extracts text from an image. Implementations must honor the
// context deadline and may fail; callers treat failure as "no vision text"
// rather than an error of their own.
type Client interface {
	// Analyze runs OCR/vision over a base64 image data URL.
	Analyze(ctx context.Context, imageDataURL string) (*types.VisionResult, error)
	// Available reports whether the client is still willing to take calls.
	Available() bool
}

// Nop is a disabled vision client: extraction stays DOM-only.
type Nop struct{}

// Analyze implements Client.
func (Nop) Analyze(ctx context.Context, imageDataURL string) (*types.VisionResult, error) {
	return nil, types.NewError(types.ErrVisionFailed, "vision disabled")
}

// Available implements Client.
func (Nop) Available() bool { return false }
