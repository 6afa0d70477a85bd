package tablegraph

import (
	"context"
	"errors"
	"fmt"
)

// ImageAgent prepares an image before the first extraction.
type ImageAgent interface {
	Run(ctx context.Context, img Image) (Image, error)
}

// VLMAgent extracts a table from an image with a vision-language model.
type VLMAgent interface {
	Run(ctx context.Context, img Image) (Extraction, error)
}

// Validator reports whether an extracted table is acceptable.
// A nil table must be reported as invalid, not as an error.
type Validator interface {
	Run(ctx context.Context, table *Table) (bool, error)
}

// RetryAgent transforms an image so the next extraction has a better chance.
type RetryAgent interface {
	Run(ctx context.Context, img Image) (Image, error)
}

// QCAgent audits a stored table. Its report never feeds back into the run.
type QCAgent interface {
	Run(ctx context.Context, table *Table) (Report, error)
}

// ImageAgentFunc adapts a function to ImageAgent.
type ImageAgentFunc func(ctx context.Context, img Image) (Image, error)

func (f ImageAgentFunc) Run(ctx context.Context, img Image) (Image, error) { return f(ctx, img) }

// VLMAgentFunc adapts a function to VLMAgent.
type VLMAgentFunc func(ctx context.Context, img Image) (Extraction, error)

func (f VLMAgentFunc) Run(ctx context.Context, img Image) (Extraction, error) { return f(ctx, img) }

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, table *Table) (bool, error)

func (f ValidatorFunc) Run(ctx context.Context, table *Table) (bool, error) { return f(ctx, table) }

// RetryAgentFunc adapts a function to RetryAgent.
type RetryAgentFunc func(ctx context.Context, img Image) (Image, error)

func (f RetryAgentFunc) Run(ctx context.Context, img Image) (Image, error) { return f(ctx, img) }

// QCAgentFunc adapts a function to QCAgent.
type QCAgentFunc func(ctx context.Context, table *Table) (Report, error)

func (f QCAgentFunc) Run(ctx context.Context, table *Table) (Report, error) { return f(ctx, table) }

// Agents is the set of collaborators a pipeline needs. All fields are required.
type Agents struct {
	Image     ImageAgent
	VLM       VLMAgent
	Validator Validator
	Retry     RetryAgent
	QC        QCAgent
}

func (a Agents) check() error {
	var errs []error
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"image", a.Image != nil},
		{"vlm", a.VLM != nil},
		{"validator", a.Validator != nil},
		{"retry", a.Retry != nil},
		{"qc", a.QC != nil},
	} {
		if !f.set {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingAgent, f.name))
		}
	}
	return errors.Join(errs...)
}
