package imaging

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// Enhancer is a RetryAgent that upscales an image and stretches its
// contrast so thin rules and small digits survive the next extraction.
type Enhancer struct {
	factor   float64
	maxWidth int
}

var _ tablegraph.RetryAgent = (*Enhancer)(nil)

// DefaultEnhanceMaxWidth caps upscaling when NewEnhancer gets no width.
const DefaultEnhanceMaxWidth = 4000

// NewEnhancer returns an Enhancer scaling by factor, capped at maxWidth
// pixels. A maxWidth <= 0 uses DefaultEnhanceMaxWidth. Factors below 1 are
// treated as 1.
func NewEnhancer(factor float64, maxWidth int) *Enhancer {
	if maxWidth <= 0 {
		maxWidth = DefaultEnhanceMaxWidth
	}
	return &Enhancer{factor: max(factor, 1), maxWidth: maxWidth}
}

func (e *Enhancer) Run(ctx context.Context, img tablegraph.Image) (tablegraph.Image, error) {
	m, err := decode(img)
	if err != nil {
		return img, err
	}

	w := min(int(float64(m.Bounds().Dx())*e.factor), e.maxWidth)
	if w > m.Bounds().Dx() {
		if m, err = resize(m, w); err != nil {
			return img, err
		}
	}
	if err := ctx.Err(); err != nil {
		return img, err
	}

	out, err := encode(stretch(m))
	if err != nil {
		return img, err
	}
	slog.DebugContext(ctx, "image enhanced",
		slog.Int("width", w),
		slog.Int("bytes", len(out.Data)),
	)
	return out, nil
}
