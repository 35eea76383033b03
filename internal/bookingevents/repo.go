package bookingevents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/pagination"
)

// Repository is append-only: there is no update or delete path.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, event *models.BookingEvent) error
	ListByBooking(ctx context.Context, params ListParams) ([]models.BookingEvent, *pagination.Cursor, error)
}

// ListParams scopes a page of the event log, oldest first.
type ListParams struct {
	BookingID uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a booking event repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Append(ctx context.Context, event *models.BookingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repositoryImpl) ListByBooking(ctx context.Context, params ListParams) ([]models.BookingEvent, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.BookingEvent{}).Where("booking_id = ?", params.BookingID)
	if params.Cursor != nil {
		query = query.Where("(created_at > ?) OR (created_at = ? AND id >= ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var events []models.BookingEvent
	if err := query.Order("created_at ASC, id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, nil, err
	}

	if len(events) > normalized {
		next := events[normalized]
		events = events[:normalized]
		return events, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return events, nil, nil
}
