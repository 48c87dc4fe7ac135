// Package storage resolves File content references into URLs the repository can fetch.
// Content is never read here: references are rewritten, not downloaded.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidReference is returned for content references that cannot be resolved.
var ErrInvalidReference = errors.New("invalid content reference")

// SchemeS3 marks references of the form s3://bucket/key.
const SchemeS3 = "s3"

// URLResolver turns a File URI into the URL registered with the repository.
type URLResolver interface {
	Resolve(ctx context.Context, uri string) (string, error)
}

// Passthrough registers URIs unchanged.
type Passthrough struct{}

func (Passthrough) Resolve(_ context.Context, uri string) (string, error) {
	return uri, nil
}

// ObjectRef is a bucket/key pair parsed from an s3 URI.
type ObjectRef struct {
	Bucket string
	Key    string
}

// ParseS3 splits s3://bucket/key. ok is false for any other scheme.
func ParseS3(uri string) (ref ObjectRef, ok bool, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return ObjectRef{}, false, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if u.Scheme != SchemeS3 {
		return ObjectRef{}, false, nil
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return ObjectRef{}, true, fmt.Errorf("%w: %s needs bucket and key", ErrInvalidReference, uri)
	}
	return ObjectRef{Bucket: u.Host, Key: key}, true, nil
}
