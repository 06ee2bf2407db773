package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amirpoori99/food-ordering-project-sub008/database"
	analyticsinfra "github.com/amirpoori99/food-ordering-project-sub008/internal/analytics/infrastructure"
)

// sourceTables tables de la base source, dans l'ordre de dépendance inverse
var sourceTables = []string{"payment_transactions", "order_items", "orders", "coupons", "restaurants", "users"}

// sourceConnString construit la chaîne de connexion de la base source de test
func sourceConnString() string {
	// Charger les variables d'environnement
	_ = godotenv.Load("../../../.env")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("SOURCE_DB_HOST", "localhost"),
		getEnv("SOURCE_DB_PORT", "5432"),
		getEnv("SOURCE_DB_USER", "fooduser"),
		getEnv("SOURCE_DB_PASSWORD", "foodpass"),
		getEnv("SOURCE_DB_NAME", "fooddb_test"),
		getEnv("SOURCE_DB_SSLMODE", "disable"),
	)
}

// SetupTestDB ouvre la base source de test, applique le schéma et vide les tables
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := sql.Open("postgres", sourceConnString())
	if err != nil {
		tb.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		tb.Fatalf("Failed to ping database: %v (password hidden)", err)
	}

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db); err != nil {
		tb.Fatalf("Failed to apply schema: %v", err)
	}
	for _, table := range sourceTables {
		if _, err := db.ExecContext(ctx, "TRUNCATE TABLE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			tb.Fatalf("Failed to truncate %s: %v", table, err)
		}
	}

	tb.Cleanup(func() { db.Close() })
	return db
}

// SetupWarehouse ouvre un entrepôt sqlite en mémoire propre au test, tables migrées
func SetupWarehouse(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(tb.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		tb.Fatalf("Failed to open warehouse: %v", err)
	}

	if err := analyticsinfra.NewFactRepository(db).Migrate(context.Background()); err != nil {
		tb.Fatalf("Failed to migrate warehouse: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("Failed to access warehouse pool: %v", err)
	}
	// une seule connexion: sérialise les jobs concurrents et garde la base mémoire vivante
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	tb.Cleanup(func() { sqlDB.Close() })

	return db
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// SkipIfNoDatabase skip le test/benchmark si la DB n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	db, err := sql.Open("postgres", sourceConnString())
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		tb.Skip("Database not available:", err)
	}
}
