package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"domsync/internal/contentmodel"
	"domsync/internal/identifier"
	"domsync/internal/metrics"
	"domsync/internal/model"
	"domsync/internal/repository"
	"domsync/internal/storage"
)

func checksum(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// create checks the entity identifier is unused, allocates the object and writes every role.
// The check and the allocation are two separate calls: concurrent creators can both pass.
func (s *entityService) create(ctx context.Context, op *operation, e *model.IntellectualEntity) (string, error) {
	tagged, err := s.codec.FormatAll(*e)
	if err != nil {
		return "", fail(op.name, "", ErrInvalidEntity, err)
	}

	existing, err := s.lookup(ctx, op.name, e.Identifier.Value)
	switch {
	case err == nil:
		return "", &OpError{Op: op.name, PID: existing, Kind: ErrAlreadyExists, Err: fmt.Errorf("entity %s", e.Identifier.Value)}
	case errors.Is(err, ErrAmbiguousIdentifier):
		return "", &OpError{Op: op.name, Kind: ErrAlreadyExists, Err: err}
	case errors.Is(err, ErrNotFound):
	case errors.Is(err, ErrUnauthorized):
		return "", err
	default:
		return "", &OpError{Op: op.name, Kind: ErrCommunication, Err: err}
	}

	pid, err := s.repo.NewObject(ctx, tagged, s.cfg.Collections, op.message)
	if err != nil {
		return "", fail(op.name, "", classify(err, ErrCommunication), err)
	}
	op.span.SetAttributes(attribute.String("pid", pid))
	op.log = op.log.WithField("pid", pid)

	cm := repository.FedoraURIPrefix + s.cfg.ContentModel
	if err := s.repo.AddRelation(ctx, pid, repository.FedoraURIPrefix+pid, repository.HasModel, cm, false, op.message); err != nil {
		return pid, fail(op.name, pid, classify(err, ErrCommunication), err)
	}
	schema, err := s.resolver.Resolve(ctx, []string{cm})
	if err != nil {
		return pid, fail(op.name, pid, classify(err, ErrCommunication), err)
	}

	w := s.writer(op, pid, nil, schema)
	if err := w.entity(ctx, e); err != nil {
		return pid, fail(op.name, pid, classify(err, ErrCommunication), err)
	}
	return pid, nil
}

// update rewrites the object pid from e, diffing against one profile snapshot.
func (s *entityService) update(ctx context.Context, op *operation, pid string, e *model.IntellectualEntity) error {
	tagged, err := s.codec.FormatAll(*e)
	if err != nil {
		return fail(op.name, pid, ErrInvalidEntity, err)
	}
	op.log = op.log.WithField("pid", pid)

	profile, err := s.repo.GetObjectProfile(ctx, pid)
	if err != nil {
		return fail(op.name, pid, classify(err, ErrCommunication), err)
	}
	if err := s.reassert(ctx, op, pid, tagged); err != nil {
		return fail(op.name, pid, classify(err, ErrCommunication), err)
	}
	schema, err := s.resolver.Resolve(ctx, profile.ContentModels)
	if err != nil {
		return fail(op.name, pid, classify(err, ErrCommunication), err)
	}

	w := s.writer(op, pid, profile, schema)
	if err := w.entity(ctx, e); err != nil {
		return fail(op.name, pid, classify(err, ErrCommunication), err)
	}
	return nil
}

// reassert makes the identifier record carry exactly the tagged identifiers of the graph.
// The record is rewritten only when the set differs.
func (s *entityService) reassert(ctx context.Context, op *operation, pid string, tagged []string) error {
	dsID := s.cfg.IdentifierDatastream
	var rec *identifier.Record
	b, err := s.repo.GetDatastreamContent(ctx, pid, dsID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		rec = identifier.NewRecord(pid)
	case err != nil:
		return fmt.Errorf("identifier record: %w", err)
	default:
		if rec, err = identifier.ParseRecord(b); err != nil {
			return err
		}
	}

	out, changed := s.codec.Reassert(rec, tagged)
	if !changed {
		return nil
	}
	content, err := out.Marshal()
	if err != nil {
		return err
	}
	if err := s.repo.WriteDatastream(ctx, pid, dsID, content, checksum(content), op.message); err != nil {
		return fmt.Errorf("identifier record: %w", err)
	}
	op.log.WithField("datastream", dsID).Debug("identifiers_reasserted")
	return nil
}

// writer applies the roles of one entity to one object.
// profile is nil on the create path: nothing exists remotely, everything is written.
type writer struct {
	repo     repository.ObjectRepository
	urls     storage.URLResolver
	metrics  *metrics.Recorder
	log      *logrus.Entry
	message  string
	pid      string
	profile  *repository.ObjectProfile
	schema   *contentmodel.Schema
	clearing bool
}

func (s *entityService) writer(op *operation, pid string, profile *repository.ObjectProfile, schema *contentmodel.Schema) *writer {
	return &writer{
		repo:     s.repo,
		urls:     s.urls,
		metrics:  s.metrics,
		log:      op.log,
		message:  op.message,
		pid:      pid,
		profile:  profile,
		schema:   schema,
		clearing: s.cfg.ClearLabelOnMissingTitle,
	}
}

func (w *writer) entity(ctx context.Context, e *model.IntellectualEntity) error {
	for _, rep := range e.Representations {
		if err := w.label(ctx, rep.Title); err != nil {
			return err
		}
	}

	for _, role := range contentmodel.Roles {
		var err error
		switch role {
		case contentmodel.RoleLifecycle:
			err = w.lifecycle(ctx, e.LifecycleState)
		case contentmodel.RoleDescriptive:
			err = w.single(ctx, role, e.Descriptive)
		case contentmodel.RoleRights, contentmodel.RoleProvenance, contentmodel.RoleSource:
			for _, rep := range e.Representations {
				if err = w.single(ctx, role, representationPayload(rep, role)); err != nil {
					break
				}
			}
		case contentmodel.RoleRepresentationTechnical:
			for _, rep := range e.Representations {
				if err = w.technical(ctx, role, rep.Technical); err != nil {
					break
				}
			}
		case contentmodel.RoleFileTechnical:
			for _, rep := range e.Representations {
				for _, f := range rep.Files {
					if err = w.technical(ctx, role, f.Technical); err != nil {
						break
					}
				}
				if err != nil {
					break
				}
			}
		case contentmodel.RoleFileContent:
			for _, rep := range e.Representations {
				for _, f := range rep.Files {
					if err = w.content(ctx, f); err != nil {
						break
					}
				}
				if err != nil {
					break
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func representationPayload(rep model.Representation, role contentmodel.Role) *model.Metadata {
	switch role {
	case contentmodel.RoleRights:
		return rep.Rights
	case contentmodel.RoleProvenance:
		return rep.Provenance
	case contentmodel.RoleSource:
		return rep.Source
	}
	return nil
}

func (w *writer) lifecycle(ctx context.Context, l *model.LifecycleState) error {
	if l == nil {
		return w.single(ctx, contentmodel.RoleLifecycle, nil)
	}
	m, err := l.Metadata()
	if err != nil {
		return err
	}
	return w.single(ctx, contentmodel.RoleLifecycle, &m)
}

func (w *writer) single(ctx context.Context, role contentmodel.Role, payload *model.Metadata) error {
	dsID, ok := w.schema.Datastream(role)
	if !ok {
		if payload != nil {
			w.log.WithField("role", role.String()).Warn("role_not_declared")
		}
		return nil
	}
	return w.apply(ctx, role, dsID, payload)
}

func (w *writer) technical(ctx context.Context, role contentmodel.Role, payloads map[string]model.Metadata) error {
	declared := w.schema.Datastreams(role)
	for _, dsID := range declared {
		var payload *model.Metadata
		if m, ok := payloads[dsID]; ok {
			payload = &m
		}
		if err := w.apply(ctx, role, dsID, payload); err != nil {
			return err
		}
	}

	var undeclared []string
	for dsID := range payloads {
		if !slices.Contains(declared, dsID) {
			undeclared = append(undeclared, dsID)
		}
	}
	if len(undeclared) > 0 {
		slices.Sort(undeclared)
		w.log.WithFields(logrus.Fields{"role": role.String(), "datastreams": undeclared}).Warn("role_not_declared")
	}
	return nil
}

// apply writes payload to dsID when its checksum differs from the snapshot, or deletes dsID
// when payload is absent and the snapshot still lists it.
func (w *writer) apply(ctx context.Context, role contentmodel.Role, dsID string, payload *model.Metadata) error {
	existing, exists := w.profile.Datastream(dsID)
	log := w.log.WithFields(logrus.Fields{"role": role.String(), "datastream": dsID})

	if payload == nil {
		if !exists {
			return nil
		}
		if err := w.repo.DeleteDatastream(ctx, w.pid, dsID, w.message); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("delete %s: %w", dsID, err)
		}
		w.metrics.Datastream(metrics.OpDelete, role.String())
		log.Debug("datastream_deleted")
		return nil
	}
	if payload.IsZero() {
		return fmt.Errorf("%w: datastream %s: empty document", model.ErrInvalidMetadata, dsID)
	}

	content := []byte(payload.String())
	sum := checksum(content)
	if exists && !existing.External && strings.EqualFold(existing.Checksum, sum) {
		w.metrics.Datastream(metrics.OpSkip, role.String())
		return nil
	}
	if err := w.repo.WriteDatastream(ctx, w.pid, dsID, content, sum, w.message); err != nil {
		return fmt.Errorf("write %s: %w", dsID, err)
	}
	w.metrics.Datastream(metrics.OpWrite, role.String())
	log.Debug("datastream_written")
	return nil
}

// content registers the file's URI as external content. It is not diffed.
func (w *writer) content(ctx context.Context, f model.File) error {
	if !f.HasContent() {
		return nil
	}
	role := contentmodel.RoleFileContent
	dsID, ok := w.schema.Datastream(role)
	if !ok {
		w.log.WithField("role", role.String()).Warn("role_not_declared")
		return nil
	}
	url, err := w.urls.Resolve(ctx, f.URI)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidReference) {
			return fmt.Errorf("%w: file %s: %w", ErrInvalidEntity, f.Identifier.Value, err)
		}
		return fmt.Errorf("resolve %s: %w", f.URI, err)
	}
	if err := w.repo.AddExternalDatastream(ctx, w.pid, dsID, f.Filename, url, repository.ControlGroupExternal, f.MIMEType, w.message); err != nil {
		return fmt.Errorf("register %s: %w", dsID, err)
	}
	w.metrics.Datastream(metrics.OpExternal, role.String())
	w.log.WithFields(logrus.Fields{"role": role.String(), "datastream": dsID}).Debug("content_registered")
	return nil
}

// label writes a present title as the object label. An absent title leaves the label
// alone unless clearing is enabled.
func (w *writer) label(ctx context.Context, title string) error {
	current := ""
	if w.profile != nil {
		current = w.profile.Label
	}
	switch {
	case title != "" && (w.profile == nil || title != current):
	case title == "" && w.clearing && current != "":
	default:
		return nil
	}
	if err := w.repo.SetLabel(ctx, w.pid, title, w.message); err != nil {
		return fmt.Errorf("set label: %w", err)
	}
	return nil
}
