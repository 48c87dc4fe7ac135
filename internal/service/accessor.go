package service

import (
	"context"
	"errors"
	"fmt"

	"domsync/internal/contentmodel"
	"domsync/internal/model"
	"domsync/internal/repository"
)

// datastreams reads role payloads of one object against a fixed profile snapshot.
// A datastream the snapshot does not list is absent and never fetched.
type datastreams struct {
	repo    repository.ObjectRepository
	pid     string
	profile *repository.ObjectProfile
	schema  *contentmodel.Schema
}

func (d datastreams) raw(ctx context.Context, dsID string) ([]byte, bool, error) {
	if dsID == "" {
		return nil, false, nil
	}
	if _, ok := d.profile.Datastream(dsID); !ok {
		return nil, false, nil
	}
	b, err := d.repo.GetDatastreamContent(ctx, d.pid, dsID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("datastream %s: %w", dsID, err)
	}
	return b, true, nil
}

func (d datastreams) metadata(ctx context.Context, dsID string) (*model.Metadata, error) {
	b, ok, err := d.raw(ctx, dsID)
	if err != nil || !ok {
		return nil, err
	}
	m, err := model.ParseMetadata(b)
	if err != nil {
		return nil, fmt.Errorf("datastream %s: %w", dsID, err)
	}
	return &m, nil
}

// single returns the payload of a single-valued role, nil when absent.
func (d datastreams) single(ctx context.Context, role contentmodel.Role) (*model.Metadata, error) {
	dsID, _ := d.schema.Datastream(role)
	return d.metadata(ctx, dsID)
}

func (d datastreams) lifecycle(ctx context.Context) (*model.LifecycleState, error) {
	m, err := d.single(ctx, contentmodel.RoleLifecycle)
	if err != nil || m == nil {
		return nil, err
	}
	return model.ParseLifecycleState(*m)
}

// technical collects every present datastream of a multi-valued role, keyed by datastream id.
func (d datastreams) technical(ctx context.Context, role contentmodel.Role) (map[string]model.Metadata, error) {
	var out map[string]model.Metadata
	for _, dsID := range d.schema.Datastreams(role) {
		m, err := d.metadata(ctx, dsID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		if out == nil {
			out = make(map[string]model.Metadata)
		}
		out[dsID] = *m
	}
	return out, nil
}

// content copies the file content reference from the snapshot entry; nothing is fetched.
func (d datastreams) content(f *model.File) {
	dsID, ok := d.schema.Datastream(contentmodel.RoleFileContent)
	if !ok {
		return
	}
	p, ok := d.profile.Datastream(dsID)
	if !ok {
		return
	}
	f.Filename = p.Label
	f.MIMEType = p.MIMEType
	f.URI = p.URL
}
