package infrastructure

import (
	"context"
	"database/sql"
)

// Executor abstraction commune à *sql.DB et *sql.Tx
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// BaseRepository structure de base pour les repositories de lecture
type BaseRepository struct {
	exec Executor
}

// NewBaseRepository crée un nouveau repository de base sur une connexion ou une transaction
func NewBaseRepository(exec Executor) BaseRepository {
	return BaseRepository{exec: exec}
}

// Query exécute une requête de lecture
func (r *BaseRepository) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.exec.QueryContext(ctx, query, args...)
}

// QueryRow exécute une requête de lecture pour une seule ligne
func (r *BaseRepository) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.exec.QueryRowContext(ctx, query, args...)
}
