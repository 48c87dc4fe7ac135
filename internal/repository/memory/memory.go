// Package memory is an in-memory repository.ObjectRepository with Fedora-like behavior:
// new objects get a DC record carrying their pid and identifiers, managed datastreams are
// checksummed with MD5, and hasModel relations populate the content model list.
// It is safe for concurrent use.
package memory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"domsync/internal/identifier"
	"domsync/internal/repository"
)

// DCDatastream is the datastream holding the object's identifier record.
const DCDatastream = "DC"

type datastream struct {
	profile repository.DatastreamProfile
	content []byte
}

type relation struct {
	subject, predicate, object string
	literal                    bool
}

type object struct {
	pid           string
	label         string
	collections   []string
	contentModels []string
	datastreams   []*datastream
	relations     []relation
}

func (o *object) datastream(id string) (*datastream, int) {
	for i, ds := range o.datastreams {
		if ds.profile.ID == id {
			return ds, i
		}
	}
	return nil, -1
}

func (o *object) put(ds *datastream) {
	if _, i := o.datastream(ds.profile.ID); i >= 0 {
		o.datastreams[i] = ds
		return
	}
	o.datastreams = append(o.datastreams, ds)
}

// Repository holds objects keyed by pid, in creation order.
type Repository struct {
	mu      sync.RWMutex
	objects map[string]*object
	order   []string
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{objects: make(map[string]*object)}
}

var _ repository.ObjectRepository = (*Repository)(nil)

// Checksum is the checksum the repository records for managed content.
func Checksum(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// Ingest creates an empty object with a caller-chosen pid, e.g. a content model object.
func (r *Repository) Ingest(pid, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.objects[pid]; exists {
		return fmt.Errorf("object %s already exists", pid)
	}
	r.add(&object{pid: pid, label: label})
	return nil
}

func (r *Repository) add(o *object) {
	r.objects[o.pid] = o
	r.order = append(r.order, o.pid)
}

func (r *Repository) get(pid string) (*object, error) {
	o, ok := r.objects[pid]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", pid, repository.ErrNotFound)
	}
	return o, nil
}

func (r *Repository) NewObject(ctx context.Context, identifiers, collections []string, logMessage string) (string, error) {
	pid := "uuid:" + uuid.NewString()
	dc, err := identifier.NewRecord(append([]string{pid}, identifiers...)...).Marshal()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	o := &object{pid: pid, collections: slices.Clone(collections)}
	o.put(managed(DCDatastream, dc))
	r.add(o)
	return pid, nil
}

func managed(id string, content []byte) *datastream {
	return &datastream{
		profile: repository.DatastreamProfile{
			ID:       id,
			Label:    id,
			MIMEType: "text/xml",
			Checksum: Checksum(content),
		},
		content: slices.Clone(content),
	}
}

func (r *Repository) GetObjectProfile(ctx context.Context, pid string) (*repository.ObjectProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, err := r.get(pid)
	if err != nil {
		return nil, err
	}
	p := &repository.ObjectProfile{
		PID:           o.pid,
		Label:         o.label,
		ContentModels: slices.Clone(o.contentModels),
		Datastreams:   make([]repository.DatastreamProfile, 0, len(o.datastreams)),
	}
	for _, ds := range o.datastreams {
		p.Datastreams = append(p.Datastreams, ds.profile)
	}
	return p, nil
}

func (r *Repository) GetDatastreamContent(ctx context.Context, pid, datastreamID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, err := r.get(pid)
	if err != nil {
		return nil, err
	}
	ds, _ := o.datastream(datastreamID)
	if ds == nil {
		return nil, fmt.Errorf("datastream %s/%s: %w", pid, datastreamID, repository.ErrNotFound)
	}
	if ds.profile.External {
		return nil, fmt.Errorf("datastream %s/%s is external content at %s", pid, datastreamID, ds.profile.URL)
	}
	return slices.Clone(ds.content), nil
}

func (r *Repository) WriteDatastream(ctx context.Context, pid, datastreamID string, content []byte, checksum, logMessage string) error {
	ds := managed(datastreamID, content)
	if checksum != "" && !strings.EqualFold(checksum, ds.profile.Checksum) {
		return fmt.Errorf("datastream %s/%s: checksum mismatch: got %s, computed %s", pid, datastreamID, checksum, ds.profile.Checksum)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	o, err := r.get(pid)
	if err != nil {
		return err
	}
	o.put(ds)
	return nil
}

func (r *Repository) DeleteDatastream(ctx context.Context, pid, datastreamID, logMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, err := r.get(pid)
	if err != nil {
		return err
	}
	if _, i := o.datastream(datastreamID); i >= 0 {
		o.datastreams = slices.Delete(o.datastreams, i, i+1)
	}
	return nil
}

func (r *Repository) AddExternalDatastream(ctx context.Context, pid, datastreamID, filename, url, controlGroup, mimeType, logMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, err := r.get(pid)
	if err != nil {
		return err
	}
	o.put(&datastream{profile: repository.DatastreamProfile{
		ID:       datastreamID,
		Label:    filename,
		MIMEType: mimeType,
		External: true,
		URL:      url,
	}})
	return nil
}

func (r *Repository) AddRelation(ctx context.Context, pid, subject, predicate, obj string, isLiteral bool, logMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, err := r.get(pid)
	if err != nil {
		return err
	}
	rel := relation{subject: subject, predicate: predicate, object: obj, literal: isLiteral}
	if !slices.Contains(o.relations, rel) {
		o.relations = append(o.relations, rel)
	}
	if predicate == repository.HasModel && !isLiteral && !slices.Contains(o.contentModels, obj) {
		o.contentModels = append(o.contentModels, obj)
	}
	return nil
}

func (r *Repository) SetLabel(ctx context.Context, pid, label, logMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, err := r.get(pid)
	if err != nil {
		return err
	}
	o.label = label
	return nil
}

// FindObjectsByIdentifier scans DC records in creation order.
func (r *Repository) FindObjectsByIdentifier(ctx context.Context, id string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []string{}
	for _, pid := range r.order {
		ds, _ := r.objects[pid].datastream(DCDatastream)
		if ds == nil || ds.profile.External {
			continue
		}
		rec, err := identifier.ParseRecord(ds.content)
		if err != nil {
			continue
		}
		if slices.Contains(rec.Identifiers(), id) {
			out = append(out, pid)
		}
	}
	return out, nil
}
