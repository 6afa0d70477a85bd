// Package imaging prepares document images for table extraction.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// Registered decoders.
	_ "image/jpeg"

	"golang.org/x/image/draw"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

var (
	// ErrEmptyImage is returned for an Image without data.
	ErrEmptyImage = errors.New("empty image")
	// ErrTooLarge is returned for images whose header declares more than
	// MaxPixels pixels.
	ErrTooLarge = errors.New("image too large")
)

// MaxPixels bounds the size of decoded images and of any transform output.
const MaxPixels = 64 << 20

// decode checks the declared dimensions before decoding the pixels.
func decode(img tablegraph.Image) (image.Image, error) {
	if len(img.Data) == 0 {
		return nil, ErrEmptyImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, MaxPixels)
	}

	m, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return m, nil
}

func encode(m image.Image) (tablegraph.Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return tablegraph.Image{}, fmt.Errorf("encode png: %w", err)
	}
	return tablegraph.Image{Data: buf.Bytes(), Format: "png"}, nil
}

// resize scales m to width w, keeping the aspect ratio.
func resize(m image.Image, w int) (image.Image, error) {
	b := m.Bounds()
	h := max(1, b.Dy()*w/b.Dx())
	if w*h > MaxPixels {
		return nil, fmt.Errorf("resize to %dx%d exceeds %d pixels", w, h, MaxPixels)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
	return dst, nil
}

func grayscale(m image.Image) *image.Gray {
	b := m.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
	return dst
}

// stretch remaps luminance so the darkest pixel becomes black and the
// lightest white. Uniform images are returned unchanged.
func stretch(m image.Image) image.Image {
	g := grayscale(m)
	lo, hi := uint8(255), uint8(0)
	for _, p := range g.Pix {
		lo = min(lo, p)
		hi = max(hi, p)
	}
	if hi <= lo {
		return g
	}

	span := int(hi - lo)
	out := image.NewGray(g.Bounds())
	for i, p := range g.Pix {
		out.Pix[i] = uint8(int(p-lo) * 255 / span)
	}
	return out
}
