package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// Repository persists booking aggregates. Lookups return gorm.ErrRecordNotFound
// when the booking does not exist.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindWithLines(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, observed StatusGuard, updates map[string]any) (int64, error)
}

// StatusGuard is the booking state a transition was validated against. The
// update only lands while the stored row still matches it.
type StatusGuard struct {
	Status   enums.BookingStatus
	VendorID *uuid.UUID
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a booking repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Create inserts the booking followed by its items and products.
func (r *repositoryImpl) Create(ctx context.Context, booking *models.Booking) error {
	conn := r.db.WithContext(ctx)
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if err := conn.Omit(clause.Associations).Create(booking).Error; err != nil {
		return err
	}

	for i := range booking.Items {
		booking.Items[i].BookingID = booking.ID
		if booking.Items[i].ID == uuid.Nil {
			booking.Items[i].ID = uuid.New()
		}
	}
	if len(booking.Items) > 0 {
		if err := conn.Create(&booking.Items).Error; err != nil {
			return err
		}
	}

	for i := range booking.Products {
		booking.Products[i].BookingID = booking.ID
		if booking.Products[i].ID == uuid.Nil {
			booking.Products[i].ID = uuid.New()
		}
	}
	if len(booking.Products) > 0 {
		if err := conn.Create(&booking.Products).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repositoryImpl) FindWithLines(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		Take(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus applies updates only while the stored status and vendor still
// equal observed, and reports how many rows changed.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, observed StatusGuard, updates map[string]any) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, observed.Status)
	if observed.VendorID == nil {
		query = query.Where("vendor_id IS NULL")
	} else {
		query = query.Where("vendor_id = ?", *observed.VendorID)
	}
	res := query.Updates(updates)
	return res.RowsAffected, res.Error
}
