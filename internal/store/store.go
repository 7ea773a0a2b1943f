package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/suteetoe/grantdesk/internal/model"
	"github.com/suteetoe/grantdesk/prometheus"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("Resource not found")
	ErrConflict  = errors.New("Resource already exists")
	ErrForbidden = errors.New("Forbidden")
)

// Entry describes the activity row written alongside a mutation.
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	Details    string
}

func (e *Entry) activity(principalID string) *model.Activity {
	a := &model.Activity{UserID: principalID, Action: e.Action}
	if e.EntityType != "" {
		a.EntityType = &e.EntityType
	}
	if e.EntityID != "" {
		a.EntityID = &e.EntityID
	}
	if e.Details != "" {
		a.Details = &e.Details
	}
	return a
}

// AuditLogger writes activity rows inside the caller's transaction.
type AuditLogger interface {
	Record(tx *gorm.DB, activity *model.Activity) error
}

// GormAuditLogger inserts activity rows with gorm.
type GormAuditLogger struct{}

func (GormAuditLogger) Record(tx *gorm.DB, activity *model.Activity) error {
	return tx.Create(activity).Error
}

// Store runs persistence operations against the database.
type Store struct {
	db    *gorm.DB
	audit AuditLogger
}

// Option configures a Store.
type Option func(*Store)

// WithAuditLogger replaces the default audit logger.
func WithAuditLogger(a AuditLogger) Option {
	return func(s *Store) {
		s.audit = a
	}
}

// New creates a Store.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, audit: GormAuditLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns a session bound to ctx for read-only queries.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Mutate runs fn and records the activity it returns in one transaction.
// If fn, or the activity insert, fails, nothing is committed. A nil Entry
// writes no activity.
func (s *Store) Mutate(ctx context.Context, principalID string, fn func(tx *gorm.DB) (*Entry, error)) error {
	defer prometheus.TrackDBOperation("mutate")(time.Now())

	var recorded *Entry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := fn(tx)
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		if err := s.audit.Record(tx, entry.activity(principalID)); err != nil {
			return fmt.Errorf("record activity %q: %w", entry.Action, err)
		}
		recorded = entry
		return nil
	})
	if err != nil {
		return translate(err)
	}

	if recorded != nil {
		prometheus.RecordAudit(recorded.EntityType)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
