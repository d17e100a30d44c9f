package core

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"annexcore/internal/blob"
	"annexcore/pkg/domain"
)

// BlobStore stores attachment bytes for annexes and announcements.
type BlobStore = blob.Store

// ErrNoBlobStore is returned by attachment operations when no blob store is configured.
var ErrNoBlobStore = errors.New("attachment storage is not configured")

// Service is the process-wide entry point used by presentation layers. It
// runs every command in a store transaction and reports the outcome to the
// configured logger, audit, metrics and tracing sinks.
type Service struct {
	store    PersistentStore
	blobs    BlobStore
	logger   Logger
	clock    Clock
	clockSet bool
	audit    AuditRecorder
	metrics  MetricsRecorder
	tracer   Tracer
	newKey   func() string
}

type nowFuncProvider interface {
	NowFunc() func() time.Time
}

type nowFuncSetter interface {
	SetNowFunc(func() time.Time)
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	svc := &Service{
		store:   store,
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		newKey:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	switch {
	case svc.clockSet:
		if setter, ok := store.(nowFuncSetter); ok {
			setter.SetNowFunc(svc.clock.Now)
		}
	default:
		svc.clock = ClockFunc(func() time.Time { return time.Now().UTC() })
		if provider, ok := store.(nowFuncProvider); ok {
			if fn := provider.NowFunc(); fn != nil {
				svc.clock = ClockFunc(fn)
			}
		}
	}
	return svc
}

// NewInMemoryService creates a service over a fresh in-memory store. A nil
// engine selects the default rule set.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(NewMemoryStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// Blobs returns the attachment store, or nil when none is configured.
func (s *Service) Blobs() BlobStore {
	return s.blobs
}

// Close releases the store when it holds external resources.
func (s *Service) Close() error {
	if closer, ok := s.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// operationMeta maps audited operations to the entity and action they touch.
type operationMeta struct {
	entity domain.EntityType
	action domain.Action
}

var auditedOperations = map[string]operationMeta{
	"create_province":           {domain.EntityProvince, domain.ActionCreate},
	"update_province":           {domain.EntityProvince, domain.ActionUpdate},
	"delete_province":           {domain.EntityProvince, domain.ActionDelete},
	"create_district":           {domain.EntityDistrict, domain.ActionCreate},
	"update_district":           {domain.EntityDistrict, domain.ActionUpdate},
	"delete_district":           {domain.EntityDistrict, domain.ActionDelete},
	"create_university":         {domain.EntityUniversity, domain.ActionCreate},
	"update_university":         {domain.EntityUniversity, domain.ActionUpdate},
	"delete_university":         {domain.EntityUniversity, domain.ActionDelete},
	"create_user":               {domain.EntityUser, domain.ActionCreate},
	"update_user":               {domain.EntityUser, domain.ActionUpdate},
	"set_user_status":           {domain.EntityUser, domain.ActionUpdate},
	"delete_user":               {domain.EntityUser, domain.ActionDelete},
	"create_annex":              {domain.EntityAnnex, domain.ActionCreate},
	"update_annex":              {domain.EntityAnnex, domain.ActionUpdate},
	"approve_annex":             {domain.EntityAnnex, domain.ActionUpdate},
	"reject_annex":              {domain.EntityAnnex, domain.ActionUpdate},
	"attach_annex_image":        {domain.EntityAnnex, domain.ActionUpdate},
	"remove_annex_image":        {domain.EntityAnnex, domain.ActionUpdate},
	"delete_annex":              {domain.EntityAnnex, domain.ActionDelete},
	"create_announcement":       {domain.EntityAnnouncement, domain.ActionCreate},
	"update_announcement":       {domain.EntityAnnouncement, domain.ActionUpdate},
	"attach_announcement_image": {domain.EntityAnnouncement, domain.ActionUpdate},
	"clear_announcement_image":  {domain.EntityAnnouncement, domain.ActionUpdate},
	"delete_announcement":       {domain.EntityAnnouncement, domain.ActionDelete},
}

// run executes fn inside a store transaction. fn returns the id of the
// record it touched, which is attached to logs and audit entries.
func (s *Service) run(ctx context.Context, op string, fn func(Transaction) (string, error)) (Result, error) {
	var entityID string
	var res Result
	err := s.observe(ctx, op, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			id, err := fn(tx)
			entityID = id
			return err
		})
		return err
	}, func(d time.Duration, err error) {
		if err != nil {
			s.recordAuditError(ctx, op, entityID, d, err)
			return
		}
		for _, v := range res.Violations {
			s.logger.Warn("rule violation", "operation", op, "rule", v.Rule, "severity", v.Severity, "entity", v.Entity, "entity_id", v.EntityID, "message", v.Message)
		}
		s.recordAuditSuccess(ctx, op, entityID, d)
	})
	return res, err
}

// observe wraps fn with tracing, metrics and logging. Failures log at debug
// level; reporting them is up to the caller. after, when set, runs once the
// outcome is known.
func (s *Service) observe(ctx context.Context, op string, fn func(context.Context) error, after func(time.Duration, error)) error {
	ctx, span := s.tracer.Start(ctx, op)
	started := time.Now()
	err := fn(ctx)
	elapsed := time.Since(started)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		s.logger.Debug("operation failed", "operation", op, "duration", elapsed, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", op, "duration", elapsed)
	}
	if after != nil {
		after(elapsed, err)
	}
	return err
}

func (s *Service) recordAuditSuccess(ctx context.Context, op, entityID string, d time.Duration) {
	s.recordAudit(ctx, op, entityID, d, nil)
}

func (s *Service) recordAuditError(ctx context.Context, op, entityID string, d time.Duration, err error) {
	s.recordAudit(ctx, op, entityID, d, err)
}

func (s *Service) recordAudit(ctx context.Context, op, entityID string, d time.Duration, err error) {
	meta, ok := auditedOperations[op]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  d,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

func notFound(entity domain.EntityType, id string) error {
	return domain.NotFoundError{Entity: entity, ID: id}
}
