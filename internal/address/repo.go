package address

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
)

// Repository persists customer addresses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOwned(ctx context.Context, addressID, customerID uuid.UUID) (*models.Address, error)
	FindDefault(ctx context.Context, customerID uuid.UUID) (*models.Address, error)
	FindByID(ctx context.Context, addressID uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an address repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// FindOwned returns nil, nil when the address does not exist or belongs to another customer.
func (r *repositoryImpl) FindOwned(ctx context.Context, addressID, customerID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", addressID, customerID).
		Take(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// FindDefault returns nil, nil when the customer has no default address.
func (r *repositoryImpl) FindDefault(ctx context.Context, customerID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		Order("created_at DESC").
		Take(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).Where("id = ?", addressID).Take(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repositoryImpl) Create(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}
