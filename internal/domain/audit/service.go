package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// Recorder is the fire-and-forget audit capability handed to the mutation
// services. Implementations must never propagate failures to callers.
type Recorder interface {
	Record(ctx context.Context, entity, entityID, action, userID string, details interface{})
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record persists an audit entry. Errors are swallowed and logged; the
// primary mutation has already happened and must not be rolled back or failed
// because auditing is down.
func (s *Service) Record(ctx context.Context, entity, entityID, action, userID string, details interface{}) {
	e := &Entry{Entity: entity, EntityID: entityID, Action: action, Details: details}
	if userID != "" {
		e.UserID = &userID
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error().Err(err).
			Str("entity", entity).
			Str("entity_id", entityID).
			Str("action", action).
			Msg("audit write failed")
	}
}

func (s *Service) ListByEntity(ctx context.Context, entity, entityID string, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListByEntity(ctx, entity, entityID, limit)
}

// NopRecorder discards every entry. Used in tests and wherever auditing is
// not configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, string, string, string, string, interface{}) {}
