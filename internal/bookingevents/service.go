package bookingevents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/pagination"
	"github.com/glowcall/glowcall-backend/pkg/types"
)

// Recorder appends audit rows inside the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, eventType enums.BookingEventType, actor types.Actor, data map[string]any) error
}

// Service exposes the booking event log.
type Service interface {
	Recorder
	List(ctx context.Context, bookingID uuid.UUID, params pagination.Params) (*ListResult, error)
}

// ListResult is one page of events plus the opaque cursor for the next page.
type ListResult struct {
	Events     []models.BookingEvent `json:"events"`
	NextCursor string                `json:"nextCursor,omitempty"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the event log service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "booking event repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, eventType enums.BookingEventType, actor types.Actor, data map[string]any) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if !eventType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid booking event type").WithDetails(map[string]any{"type": eventType})
	}

	var payload datatypes.JSON
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode booking event data")
		}
		payload = datatypes.JSON(raw)
	}

	event := &models.BookingEvent{
		ID:        uuid.New(),
		BookingID: bookingID,
		Type:      eventType,
		ActorID:   actor.ID,
		ActorRole: actor.RolePtr(),
		Data:      payload,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.WithTx(tx).Append(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append booking event")
	}
	return nil
}

func (s *service) List(ctx context.Context, bookingID uuid.UUID, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	events, next, err := s.repo.ListByBooking(ctx, ListParams{
		BookingID: bookingID,
		Limit:     params.Limit,
		Cursor:    cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list booking events")
	}

	result := &ListResult{Events: events}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}
