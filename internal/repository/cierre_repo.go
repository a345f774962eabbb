package repository

import (
	"context"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CierreRepository interface {
	// Upsert persists the closing snapshot keyed on (sucursal_id, fecha),
	// last write wins. Re-saving the same day replaces the row wholesale.
	Upsert(ctx context.Context, c *model.CierreCaja) error
	FindBySucursalYFecha(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*model.CierreCaja, error)
	List(ctx context.Context, sucursalID uuid.UUID, page, limit int) ([]model.CierreCaja, int64, error)
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) Upsert(ctx context.Context, c *model.CierreCaja) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sucursal_id"}, {Name: "fecha"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"efectivo_esperado", "transferencia_esperada",
			"efectivo_real", "transferencia_real",
			"diferencia_efectivo", "diferencia_transferencia",
			"total_ventas", "ventas_fisicas", "ventas_domicilio",
			"total_unidades", "facturas_anuladas", "total_anulado",
			"garantias_count",
			"egreso_garantias_efectivo", "egreso_garantias_transferencia",
			"notas", "motivo_diferencia", "usuario_id", "updated_at",
		}),
	}).Create(c).Error
}

func (r *cierreRepo) FindBySucursalYFecha(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*model.CierreCaja, error) {
	var c model.CierreCaja
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND fecha = ?", sucursalID, fecha.Format("2006-01-02")).
		First(&c).Error
	return &c, err
}

func (r *cierreRepo) List(ctx context.Context, sucursalID uuid.UUID, page, limit int) ([]model.CierreCaja, int64, error) {
	var cierres []model.CierreCaja
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.CierreCaja{}).Where("sucursal_id = ?", sucursalID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("fecha DESC").Offset(offset).Limit(limit).Find(&cierres).Error
	return cierres, total, err
}
