package service

import (
	"context"
	"errors"
	"fmt"

	"domsync/internal/contentmodel"
	"domsync/internal/identifier"
	"domsync/internal/model"
	"domsync/internal/repository"
)

type graphIDs struct {
	entity, representation, file model.Identifier
}

// identifiers reads the identifier record of pid and extracts the three graph ids.
func (s *entityService) identifiers(ctx context.Context, pid string) (graphIDs, error) {
	b, err := s.repo.GetDatastreamContent(ctx, pid, s.cfg.IdentifierDatastream)
	if err != nil {
		return graphIDs{}, fmt.Errorf("identifier record: %w", err)
	}
	rec, err := identifier.ParseRecord(b)
	if err != nil {
		return graphIDs{}, err
	}
	values := rec.Identifiers()

	var ids graphIDs
	var errs []error
	for _, p := range []struct {
		dst  *model.Identifier
		role identifier.Role
	}{
		{&ids.entity, identifier.RoleEntity},
		{&ids.representation, identifier.RoleRepresentation},
		{&ids.file, identifier.RoleFile},
	} {
		id, err := s.codec.Parse(values, p.role)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*p.dst = id
	}
	return ids, errors.Join(errs...)
}

func (s *entityService) read(ctx context.Context, op *operation, pid string) (*model.IntellectualEntity, error) {
	ids, err := s.identifiers(ctx, pid)
	if err != nil {
		return nil, fail(op.name, pid, classify(err, ErrNotFound), err)
	}
	profile, err := s.repo.GetObjectProfile(ctx, pid)
	if err != nil {
		return nil, fail(op.name, pid, classify(err, ErrNotFound), err)
	}
	schema, err := s.resolver.Resolve(ctx, profile.ContentModels)
	if err != nil {
		return nil, fail(op.name, pid, classify(err, ErrNotFound), err)
	}

	ent, err := assemble(ctx, datastreams{repo: s.repo, pid: pid, profile: profile, schema: schema}, ids, profile)
	if err != nil {
		return nil, fail(op.name, pid, classify(err, ErrNotFound), err)
	}
	op.log.WithField("pid", pid).Debug("entity_read")
	return ent, nil
}

func assemble(ctx context.Context, d datastreams, ids graphIDs, profile *repository.ObjectProfile) (*model.IntellectualEntity, error) {
	var err error
	ent := &model.IntellectualEntity{Identifier: ids.entity}
	if ent.Descriptive, err = d.single(ctx, contentmodel.RoleDescriptive); err != nil {
		return nil, err
	}
	if ent.LifecycleState, err = d.lifecycle(ctx); err != nil {
		return nil, err
	}

	rep := model.Representation{Identifier: ids.representation, Title: profile.Label}
	if rep.Rights, err = d.single(ctx, contentmodel.RoleRights); err != nil {
		return nil, err
	}
	if rep.Provenance, err = d.single(ctx, contentmodel.RoleProvenance); err != nil {
		return nil, err
	}
	if rep.Source, err = d.single(ctx, contentmodel.RoleSource); err != nil {
		return nil, err
	}
	if rep.Technical, err = d.technical(ctx, contentmodel.RoleRepresentationTechnical); err != nil {
		return nil, err
	}

	file := model.File{Identifier: ids.file}
	if file.Technical, err = d.technical(ctx, contentmodel.RoleFileTechnical); err != nil {
		return nil, err
	}
	d.content(&file)

	rep.Files = []model.File{file}
	ent.Representations = []model.Representation{rep}
	return ent, nil
}
