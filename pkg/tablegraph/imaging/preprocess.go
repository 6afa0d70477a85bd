package imaging

import (
	"context"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// Options configures a Preprocessor.
type Options struct {
	// MaxWidth downscales wider images. Zero keeps the original width.
	MaxWidth int
	// Grayscale drops colour information.
	Grayscale bool
}

// Preprocessor normalises an input image to PNG before the first extraction.
type Preprocessor struct {
	opts Options
}

var _ tablegraph.ImageAgent = (*Preprocessor)(nil)

func NewPreprocessor(opts Options) *Preprocessor {
	return &Preprocessor{opts: opts}
}

// Run decodes img, applies the configured transforms and re-encodes it as PNG.
func (p *Preprocessor) Run(ctx context.Context, img tablegraph.Image) (tablegraph.Image, error) {
	m, err := decode(img)
	if err != nil {
		return img, err
	}
	if err := ctx.Err(); err != nil {
		return img, err
	}

	if p.opts.MaxWidth > 0 && m.Bounds().Dx() > p.opts.MaxWidth {
		if m, err = resize(m, p.opts.MaxWidth); err != nil {
			return img, err
		}
	}
	if p.opts.Grayscale {
		m = grayscale(m)
	}

	return encode(m)
}
