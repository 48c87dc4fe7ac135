package contentmodel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrFetch wraps failures to retrieve a composite model document.
var ErrFetch = errors.New("content model fetch failed")

const (
	// DefaultDatastream holds the composite model of a content model object.
	DefaultDatastream = "DS-COMPOSITE-MODEL"

	fedoraPrefix = "info:fedora/"
)

// Fetcher reads datastream content from the repository.
type Fetcher interface {
	GetDatastreamContent(ctx context.Context, pid, datastreamID string) ([]byte, error)
}

// Options configure a Resolver.
type Options struct {
	// Datastream of content model objects holding the composite model.
	Datastream string
	// Extension name carrying the role annotations.
	Extension string
	// Ignored content models are never fetched, e.g. fedora-system:FedoraObject-3.0.
	Ignored []string
	Logger  logrus.FieldLogger
}

// Resolver builds the merged schema of an object's content models.
// Nothing is cached: every Resolve refetches the documents.
type Resolver struct {
	fetcher Fetcher
	opts    Options
}

// NewResolver creates a Resolver reading documents through f.
func NewResolver(f Fetcher, opts Options) *Resolver {
	if opts.Datastream == "" {
		opts.Datastream = DefaultDatastream
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Resolver{fetcher: f, opts: opts}
}

// ContentModelPID strips the info:fedora/ prefix from a content model reference.
func ContentModelPID(ref string) string {
	return strings.TrimPrefix(ref, fedoraPrefix)
}

// Resolve fetches one composite model per content model, in order, and merges them.
func (r *Resolver) Resolve(ctx context.Context, contentModels []string) (*Schema, error) {
	merged := NewSchema()
	for _, ref := range contentModels {
		pid := ContentModelPID(ref)
		if slices.Contains(r.opts.Ignored, pid) {
			continue
		}

		b, err := r.fetcher.GetDatastreamContent(ctx, pid, r.opts.Datastream)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFetch, pid, err)
		}
		doc, err := ParseDocument(b, r.opts.Extension)
		if err != nil {
			return nil, fmt.Errorf("content model %s: %w", pid, err)
		}
		s, err := FromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("content model %s: %w", pid, err)
		}

		for _, c := range merged.Merge(s) {
			r.opts.Logger.WithFields(logrus.Fields{
				"content_model": pid,
				"role":          c.Role.String(),
				"previous":      c.Previous,
				"current":       c.Current,
			}).Warn("content_model_role_conflict")
		}
		for name := range s.unknown {
			r.opts.Logger.WithFields(logrus.Fields{
				"content_model": pid,
				"role":          name,
			}).Debug("content_model_unknown_role")
		}
	}
	return merged, nil
}
