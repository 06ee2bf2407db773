package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/amirpoori99/food-ordering-project-sub008/internal/shared/infrastructure"
)

// DB connexion à la base opérationnelle (source)
var DB *sql.DB

// Init ouvre la base source via lib/pq
func Init(connStr string) error {
	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return err
	}

	// Pool de connexions: l'ETL lit en parallèle (un job par type d'entité)
	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(5 * time.Minute)

	return DB.Ping()
}

func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// ApplySchema crée les tables de la base source si elles n'existent pas
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, SourceSchema); err != nil {
		return fmt.Errorf("apply source schema: %w", err)
	}
	return nil
}

// OpenWarehouse ouvre l'entrepôt analytique (postgres ou sqlite) via gorm
func OpenWarehouse(driver, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported warehouse driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  infrastructure.NewGormLogger(logger, 500*time.Millisecond),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	if driver == "sqlite" {
		// sqlite n'accepte qu'un écrivain à la fois
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open warehouse: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
