package repository

import (
	"context"

	"github.com/programamos-tech/oviler-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository is read-only for the closing engine, and always batched:
// warranty valuation resolves every product of the day in one round trip.
type ProductoRepository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Producto, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var productos []model.Producto
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&productos).Error
	return productos, err
}
