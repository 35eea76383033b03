package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
)

// Repository reads vendors and manages their beauticians. Lookups return
// gorm.ErrRecordNotFound for missing rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	FindEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Employee, error)
	CreateEmployee(ctx context.Context, employee *models.Employee) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a vendor repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Where("id = ?", vendorID).Take(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repositoryImpl) FindEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Where("id = ?", employeeID).Take(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repositoryImpl) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}
