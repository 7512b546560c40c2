package snapshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	_ "image/jpeg" // viewport captures arrive as png or jpeg

	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// Crop is a raster cutout around the attention point. Data is PNG-encoded;
// Bounds is the covered region in logical page pixels.
type Crop struct {
	Data   []byte
	Bounds document.Rect
}

// DataURL returns the crop as a base64 PNG data URL for the vision
// endpoint.
func (c *Crop) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(c.Data)
}

// Cropper cuts attention-centered squares out of viewport captures.
type Cropper struct {
	cfg    config.SnapshotConfig
	logger *zap.Logger
}

// NewCropper creates a cropper. A nil logger is replaced with a nop
// logger.
func NewCropper(cfg config.SnapshotConfig, logger *zap.Logger) *Cropper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cropper{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "cropper")),
	}
}

// DecodeDataURL decodes a base64 image data URL into an image.
func DecodeDataURL(dataURL string) (image.Image, error) {
	_, b64, ok := strings.Cut(dataURL, ";base64,")
	if !ok {
		return nil, fmt.Errorf("not a base64 data url")
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Crop cuts a square of the configured logical size centered on the point.
// The device scale is derived from the captured image's actual width
// against the reported viewport width, never assumed, so zoom and high-DPI
// displays produce aligned crops. The square is clamped to the capture
// bounds.
func (c *Cropper) Crop(img image.Image, viewportWidth float64, p types.Point) (*Crop, error) {
	if img == nil {
		return nil, types.NewError(types.ErrSnapshotFailed, "nil capture image")
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, types.NewError(types.ErrSnapshotFailed, "empty capture image")
	}

	scale := 1.0
	if viewportWidth > 0 {
		scale = float64(b.Dx()) / viewportWidth
	}

	half := float64(c.cfg.CropSize) / 2
	x0 := int((p.X - half) * scale)
	y0 := int((p.Y - half) * scale)
	x1 := int((p.X + half) * scale)
	y1 := int((p.Y + half) * scale)

	rect := image.Rect(x0, y0, x1, y1).Intersect(b)
	if rect.Empty() {
		return nil, types.NewError(types.ErrSnapshotFailed, "attention point outside capture")
	}

	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			out.Set(x-rect.Min.X, y-rect.Min.Y, img.At(x, y))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, types.NewError(types.ErrSnapshotFailed, "encode crop").WithCause(err)
	}

	crop := &Crop{
		Data: buf.Bytes(),
		Bounds: document.Rect{
			X:      float64(rect.Min.X) / scale,
			Y:      float64(rect.Min.Y) / scale,
			Width:  float64(rect.Dx()) / scale,
			Height: float64(rect.Dy()) / scale,
		},
	}

	c.logger.Debug("crop produced",
		zap.Float64("scale", scale),
		zap.Int("bytes", len(crop.Data)))

	return crop, nil
}
