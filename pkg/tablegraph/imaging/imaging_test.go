package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// gradient builds a w x h image whose grey level runs from lo to hi.
func gradient(w, h int, lo, hi uint8) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		v := lo
		if w > 1 {
			v = lo + uint8(int(hi-lo)*x/(w-1))
		}
		for y := range h {
			m.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return m
}

func pngImage(t *testing.T, m image.Image) tablegraph.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, m))
	return tablegraph.Image{Data: buf.Bytes(), Format: "png"}
}

func decodePNG(t *testing.T, img tablegraph.Image) image.Image {
	t.Helper()
	require.Equal(t, "png", img.Format)
	m, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	return m
}

func TestPreprocessor_Downscale(t *testing.T) {
	p := NewPreprocessor(Options{MaxWidth: 100})

	out, err := p.Run(context.Background(), pngImage(t, gradient(400, 200, 0, 255)))

	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 50), decodePNG(t, out).Bounds())
}

func TestPreprocessor_KeepsSmallImages(t *testing.T) {
	p := NewPreprocessor(Options{MaxWidth: 1000})

	out, err := p.Run(context.Background(), pngImage(t, gradient(40, 20, 0, 255)))

	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 20), decodePNG(t, out).Bounds())
}

func TestPreprocessor_JPEGToGrayPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradient(32, 16, 0, 255), nil))

	p := NewPreprocessor(Options{Grayscale: true})
	out, err := p.Run(context.Background(), tablegraph.Image{Data: buf.Bytes(), Format: "jpeg"})

	require.NoError(t, err)
	m := decodePNG(t, out)
	assert.Equal(t, color.GrayModel, m.ColorModel())
}

func TestPreprocessor_Errors(t *testing.T) {
	p := NewPreprocessor(Options{})

	_, err := p.Run(context.Background(), tablegraph.Image{})
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = p.Run(context.Background(), tablegraph.Image{Data: []byte("not an image")})
	assert.ErrorContains(t, err, "decode image")
}

// withDimensions rewrites the IHDR chunk of a PNG to declare w x h pixels.
func withDimensions(t *testing.T, img tablegraph.Image, w, h uint32) tablegraph.Image {
	t.Helper()
	data := bytes.Clone(img.Data)
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return tablegraph.Image{Data: data, Format: img.Format}
}

func TestPreprocessor_RejectsOversizedHeader(t *testing.T) {
	huge := withDimensions(t, pngImage(t, gradient(4, 4, 0, 255)), 12000, 12000)

	_, err := NewPreprocessor(Options{MaxWidth: 100}).Run(context.Background(), huge)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = NewEnhancer(2, 0).Run(context.Background(), huge)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestEnhancer_UpscalesAndStretches(t *testing.T) {
	e := NewEnhancer(2, 0)

	out, err := e.Run(context.Background(), pngImage(t, gradient(50, 10, 100, 150)))

	require.NoError(t, err)
	m := decodePNG(t, out)
	assert.Equal(t, image.Rect(0, 0, 100, 20), m.Bounds())

	gray, ok := m.(*image.Gray)
	require.True(t, ok)
	lo, hi := uint8(255), uint8(0)
	for _, p := range gray.Pix {
		lo = min(lo, p)
		hi = max(hi, p)
	}
	assert.Equal(t, uint8(0), lo)
	assert.Equal(t, uint8(255), hi)
}

func TestEnhancer_RespectsMaxWidth(t *testing.T) {
	e := NewEnhancer(4, 120)

	out, err := e.Run(context.Background(), pngImage(t, gradient(100, 50, 0, 255)))

	require.NoError(t, err)
	assert.Equal(t, 120, decodePNG(t, out).Bounds().Dx())
}

func TestEnhancer_DefaultMaxWidth(t *testing.T) {
	e := NewEnhancer(3, 0)

	out, err := e.Run(context.Background(), pngImage(t, gradient(2000, 2, 0, 255)))

	require.NoError(t, err)
	assert.Equal(t, DefaultEnhanceMaxWidth, decodePNG(t, out).Bounds().Dx())
}

func TestEnhancer_UniformImage(t *testing.T) {
	e := NewEnhancer(1, 0)

	out, err := e.Run(context.Background(), pngImage(t, gradient(8, 8, 90, 90)))

	require.NoError(t, err)
	gray := decodePNG(t, out).(*image.Gray)
	for _, p := range gray.Pix {
		assert.Equal(t, uint8(90), p)
	}
}
