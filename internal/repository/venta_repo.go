package repository

import (
	"context"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// ListByRango returns every sale of the branch whose created_at falls in
	// [desde, hasta], any estado, couriers preloaded. The closing pipeline
	// partitions by estado itself.
	ListByRango(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]model.Venta, error)
	// ItemsPorVentas batch-fetches the line items of a sale-id set, product
	// joined for display names. The id set must come from a prior ListByRango.
	ItemsPorVentas(ctx context.Context, ventaIDs []uuid.UUID) ([]model.VentaItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// MarcarDomiciliosPagados stamps domicilio_pagado on a set of sales in a
	// single transaction: either every courier fee is settled or none is.
	MarcarDomiciliosPagados(ctx context.Context, ventaIDs []uuid.UUID, pagadoAt time.Time) error
	MarcarDomicilioPagado(ctx context.Context, ventaID uuid.UUID, pagadoAt time.Time) error
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) ListByRango(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND created_at BETWEEN ? AND ?", sucursalID, desde, hasta).
		Preload("Repartidor").
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ItemsPorVentas(ctx context.Context, ventaIDs []uuid.UUID) ([]model.VentaItem, error) {
	if len(ventaIDs) == 0 {
		return nil, nil
	}
	var items []model.VentaItem
	err := r.db.WithContext(ctx).
		Where("venta_id IN ?", ventaIDs).
		Preload("Producto").
		Find(&items).Error
	return items, err
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Repartidor").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) MarcarDomiciliosPagados(ctx context.Context, ventaIDs []uuid.UUID, pagadoAt time.Time) error {
	if len(ventaIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&model.Venta{}).
			Where("id IN ?", ventaIDs).
			Updates(map[string]interface{}{
				"domicilio_pagado":    true,
				"domicilio_pagado_at": pagadoAt,
			}).Error
	})
}

func (r *ventaRepo) MarcarDomicilioPagado(ctx context.Context, ventaID uuid.UUID, pagadoAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ?", ventaID).
		Updates(map[string]interface{}{
			"domicilio_pagado":    true,
			"domicilio_pagado_at": pagadoAt,
		}).Error
}
