package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
)

// Repository reads the priced catalogs used at intake. Inactive rows are
// never returned.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ActiveCatalogServices(ctx context.Context, ids []uuid.UUID) ([]models.ServiceCatalog, error)
	ActiveServices(ctx context.Context, ids []uuid.UUID) ([]models.Service, error)
	ActiveProducts(ctx context.Context, ids []uuid.UUID) ([]models.ProductCatalog, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ActiveCatalogServices(ctx context.Context, ids []uuid.UUID) ([]models.ServiceCatalog, error) {
	var rows []models.ServiceCatalog
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ActiveServices(ctx context.Context, ids []uuid.UUID) ([]models.Service, error) {
	var rows []models.Service
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ActiveProducts(ctx context.Context, ids []uuid.UUID) ([]models.ProductCatalog, error) {
	var rows []models.ProductCatalog
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&rows).Error
	return rows, err
}

// UniqueIDs returns ids with duplicates removed, preserving first occurrence.
func UniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
