package infra

import (
	"fmt"

	"github.com/programamos-tech/oviler-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate for every table the closing engine touches.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations creates/updates the schema. Also used by the integration
// tests against a throwaway Postgres container.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Sucursal{},
		&model.Usuario{},
		&model.Producto{},
		&model.Inventario{},
		&model.Repartidor{},
		&model.Venta{},
		&model.VentaItem{},
		&model.Garantia{},
		&model.CierreCaja{},
	)
}
