package repository

import (
	"context"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/model"

	"gorm.io/gorm"
)

type GarantiaRepository interface {
	// ProcesadasEnRango returns processed warranties created inside the day's
	// bounds, with the original sale (payment split, branch) and sale item
	// (price, quantity) joined. Branch filtering happens in the service since
	// not every warranty row carries its own sucursal_id.
	ProcesadasEnRango(ctx context.Context, desde, hasta time.Time) ([]model.Garantia, error)
}

type garantiaRepo struct{ db *gorm.DB }

func NewGarantiaRepository(db *gorm.DB) GarantiaRepository { return &garantiaRepo{db: db} }

func (r *garantiaRepo) ProcesadasEnRango(ctx context.Context, desde, hasta time.Time) ([]model.Garantia, error) {
	var garantias []model.Garantia
	err := r.db.WithContext(ctx).
		Where("estado = 'procesada' AND created_at BETWEEN ? AND ?", desde, hasta).
		Preload("Venta").
		Preload("VentaItem").
		Find(&garantias).Error
	return garantias, err
}
