// Package repository describes the remote object repository this module synchronizes against.
// The network client lives outside this module; implementations in subpackages (memory) and
// the mocks are what the engine is exercised with.
package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means the object or datastream does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized means the credentials were rejected or lack permission.
	ErrUnauthorized = errors.New("unauthorized")
)

// Control groups of datastreams.
const (
	ControlGroupManaged  = "M"
	ControlGroupExternal = "E"
)

// Fedora-style URIs used when asserting the content model relation.
const (
	FedoraURIPrefix = "info:fedora/"
	HasModel        = "info:fedora/fedora-system:def/model#hasModel"
)

// DatastreamProfile is one entry of an object's datastream listing.
type DatastreamProfile struct {
	ID       string
	Label    string
	MIMEType string
	External bool
	URL      string
	Checksum string
}

// ObjectProfile is a point-in-time view of a repository object.
type ObjectProfile struct {
	PID           string
	Label         string
	ContentModels []string
	Datastreams   []DatastreamProfile
}

// Datastream returns the profile of the datastream with the given id.
func (p *ObjectProfile) Datastream(id string) (DatastreamProfile, bool) {
	if p == nil {
		return DatastreamProfile{}, false
	}
	for _, ds := range p.Datastreams {
		if ds.ID == id {
			return ds, true
		}
	}
	return DatastreamProfile{}, false
}

// ObjectRepository is the capability the synchronization engine consumes.
// Every call is a blocking round-trip; timeouts belong to the implementation or ctx.
type ObjectRepository interface {
	// NewObject allocates an object carrying the identifiers and returns its pid.
	NewObject(ctx context.Context, identifiers, collections []string, logMessage string) (string, error)

	// GetObjectProfile returns label, content models and datastream listing.
	GetObjectProfile(ctx context.Context, pid string) (*ObjectProfile, error)

	// GetDatastreamContent returns the raw content. ErrNotFound if object or datastream is absent.
	GetDatastreamContent(ctx context.Context, pid, datastreamID string) ([]byte, error)

	// WriteDatastream creates or replaces a managed datastream.
	WriteDatastream(ctx context.Context, pid, datastreamID string, content []byte, checksum, logMessage string) error

	// DeleteDatastream removes a datastream. It must not fail when the datastream is already absent.
	DeleteDatastream(ctx context.Context, pid, datastreamID, logMessage string) error

	// AddExternalDatastream registers content held elsewhere, referenced by url.
	AddExternalDatastream(ctx context.Context, pid, datastreamID, filename, url, controlGroup, mimeType, logMessage string) error

	// AddRelation asserts subject-predicate-object on the object.
	AddRelation(ctx context.Context, pid, subject, predicate, object string, isLiteral bool, logMessage string) error

	// SetLabel replaces the object label.
	SetLabel(ctx context.Context, pid, label, logMessage string) error

	// FindObjectsByIdentifier searches the reverse identifier index.
	FindObjectsByIdentifier(ctx context.Context, identifier string) ([]string, error)
}
