package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/db"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
)

const (
	pgInvoiceBookingConstraint     = "invoices_booking_id_key"
	sqliteInvoiceBookingConstraint = "invoices.booking_id"
)

// Repository persists invoices and payouts. Lookups return
// gorm.ErrRecordNotFound when nothing was issued.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Invoice, error)
	FindPayoutByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Payout, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	CreatePayout(ctx context.Context, payout *models.Payout) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an invoice repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Take(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repositoryImpl) FindPayoutByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Take(&payout).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repositoryImpl) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repositoryImpl) CreatePayout(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func isDuplicateInvoice(err error) bool {
	return db.IsUniqueViolation(err, pgInvoiceBookingConstraint) ||
		db.IsUniqueViolation(err, sqliteInvoiceBookingConstraint)
}
