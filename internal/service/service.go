package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"domsync/internal/config"
	"domsync/internal/contentmodel"
	"domsync/internal/identifier"
	"domsync/internal/metrics"
	"domsync/internal/model"
	"domsync/internal/repository"
	"domsync/internal/storage"
)

const tracerName = "domsync/internal/service"

// Operation names, used in errors, spans, logs and metrics.
const (
	opRead   = "read"
	opFind   = "find"
	opCreate = "create"
	opUpdate = "update"
)

// EntityService reads and writes intellectual entities stored as repository objects.
type EntityService interface {
	// Read assembles the entity stored under pid.
	Read(ctx context.Context, pid string) (*model.IntellectualEntity, error)

	// ReadByIdentifier looks up the object of an entity identifier and reads it.
	ReadByIdentifier(ctx context.Context, entityID string) (*model.IntellectualEntity, error)

	// CreateOrUpdate writes e. An empty pid creates a new object and fails with
	// ErrAlreadyExists if the entity identifier is already in use.
	// It returns the pid of the written object.
	CreateOrUpdate(ctx context.Context, pid string, e *model.IntellectualEntity) (string, error)

	// UpdateByIdentifier writes e over the object holding entity identifier id.
	// id may differ from e's own identifier; the object then carries e's identifiers.
	UpdateByIdentifier(ctx context.Context, id string, e *model.IntellectualEntity) (string, error)

	// FindByIdentifier returns the single pid holding entityID.
	FindByIdentifier(ctx context.Context, entityID string) (string, error)
}

type entityService struct {
	repo     repository.ObjectRepository
	cfg      config.SyncConfig
	codec    identifier.Codec
	resolver *contentmodel.Resolver
	urls     storage.URLResolver
	log      logrus.FieldLogger
	metrics  *metrics.Recorder
	tracer   trace.Tracer
}

// Option customizes an EntityService.
type Option func(*entityService)

// WithLogger sets the logger; the standard logrus logger is used otherwise.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *entityService) { s.log = l }
}

// WithMetrics records datastream operations and durations on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *entityService) { s.metrics = r }
}

// WithTracerProvider sets the provider spans are started from; otel's global provider by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *entityService) { s.tracer = tp.Tracer(tracerName) }
}

// WithURLResolver rewrites file content URIs before they are registered.
func WithURLResolver(r storage.URLResolver) Option {
	return func(s *entityService) { s.urls = r }
}

// NewEntityService constructs a new EntityService.
func NewEntityService(repo repository.ObjectRepository, cfg config.SyncConfig, opts ...Option) (EntityService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sync config: %w", err)
	}
	s := &entityService{
		repo:  repo,
		cfg:   cfg,
		codec: identifier.NewCodec(cfg.IdentifierNamespace),
		urls:  storage.Passthrough{},
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.resolver = contentmodel.NewResolver(repo, contentmodel.Options{
		Datastream: cfg.CompositeModelDatastream,
		Extension:  cfg.ExtensionName,
		Ignored:    cfg.IgnoredContentModels,
		Logger:     s.log,
	})
	return s, nil
}

// operation carries the per-call state of one public method.
type operation struct {
	name    string
	start   time.Time
	span    trace.Span
	log     *logrus.Entry
	message string
}

func (s *entityService) begin(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *operation) {
	ctx, span := s.tracer.Start(ctx, "domsync."+name, trace.WithAttributes(attrs...))
	id := uuid.NewString()
	fields := logrus.Fields{"operation": name, "operation_id": id}
	for _, a := range attrs {
		fields[string(a.Key)] = a.Value.Emit()
	}
	return ctx, &operation{
		name:    name,
		start:   time.Now(),
		span:    span,
		log:     s.log.WithFields(fields),
		message: fmt.Sprintf("%s: %s %s", s.cfg.LogMessage, name, id),
	}
}

func (s *entityService) end(op *operation, err error) {
	defer op.span.End()
	s.metrics.Observe(op.name, op.start, err)
	entry := op.log.WithField("duration_ms", time.Since(op.start).Milliseconds())
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		entry.WithError(err).Error("entity_operation_failed")
		return
	}
	op.span.SetStatus(codes.Ok, "")
	entry.Info("entity_operation_completed")
}

func (s *entityService) Read(ctx context.Context, pid string) (ent *model.IntellectualEntity, err error) {
	ctx, op := s.begin(ctx, opRead, attribute.String("pid", pid))
	defer func() { s.end(op, err) }()

	if pid == "" {
		return nil, fail(opRead, "", ErrIDRequired, nil)
	}
	return s.read(ctx, op, pid)
}

func (s *entityService) ReadByIdentifier(ctx context.Context, entityID string) (ent *model.IntellectualEntity, err error) {
	ctx, op := s.begin(ctx, opRead, attribute.String("entity_id", entityID))
	defer func() { s.end(op, err) }()

	pid, err := s.lookup(ctx, opRead, entityID)
	if err != nil {
		return nil, err
	}
	op.span.SetAttributes(attribute.String("pid", pid))
	return s.read(ctx, op, pid)
}

func (s *entityService) CreateOrUpdate(ctx context.Context, pid string, e *model.IntellectualEntity) (out string, err error) {
	name := opUpdate
	if pid == "" {
		name = opCreate
	}
	ctx, op := s.begin(ctx, name, attribute.String("pid", pid), attribute.String("entity_id", entityID(e)))
	defer func() { s.end(op, err) }()

	if err := validate(name, pid, e); err != nil {
		return "", err
	}
	if pid == "" {
		return s.create(ctx, op, e)
	}
	return pid, s.update(ctx, op, pid, e)
}

func (s *entityService) UpdateByIdentifier(ctx context.Context, id string, e *model.IntellectualEntity) (pid string, err error) {
	ctx, op := s.begin(ctx, opUpdate, attribute.String("entity_id", id))
	defer func() { s.end(op, err) }()

	if err := validate(opUpdate, "", e); err != nil {
		return "", err
	}
	pid, err = s.lookup(ctx, opUpdate, id)
	if err != nil {
		return "", err
	}
	op.span.SetAttributes(attribute.String("pid", pid))
	return pid, s.update(ctx, op, pid, e)
}

func (s *entityService) FindByIdentifier(ctx context.Context, entityID string) (pid string, err error) {
	ctx, op := s.begin(ctx, opFind, attribute.String("entity_id", entityID))
	defer func() { s.end(op, err) }()

	return s.lookup(ctx, opFind, entityID)
}

func entityID(e *model.IntellectualEntity) string {
	if e == nil {
		return ""
	}
	return e.Identifier.Value
}

func validate(op, pid string, e *model.IntellectualEntity) error {
	if e == nil {
		return fail(op, pid, ErrInvalidEntity, fmt.Errorf("entity is nil"))
	}
	if e.Identifier.Value == "" {
		return fail(op, pid, ErrInvalidEntity, fmt.Errorf("entity identifier is empty"))
	}
	return nil
}
