package repository

import (
	"context"

	"github.com/programamos-tech/oviler-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventarioRepository interface {
	// PorSucursalYProductos batch-fetches stock rows for a product-id set
	// within one branch.
	PorSucursalYProductos(ctx context.Context, sucursalID uuid.UUID, productoIDs []uuid.UUID) ([]model.Inventario, error)
}

type inventarioRepo struct{ db *gorm.DB }

func NewInventarioRepository(db *gorm.DB) InventarioRepository { return &inventarioRepo{db: db} }

func (r *inventarioRepo) PorSucursalYProductos(ctx context.Context, sucursalID uuid.UUID, productoIDs []uuid.UUID) ([]model.Inventario, error) {
	if len(productoIDs) == 0 {
		return nil, nil
	}
	var niveles []model.Inventario
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND producto_id IN ?", sucursalID, productoIDs).
		Find(&niveles).Error
	return niveles, err
}
