package repository

import (
	"context"
	"database/sql"

	"github.com/sigcr-dev/rehab-manager/backend/internal/config"
)

// txExecutor cubre tanto *sql.DB como *sql.Tx para los helpers que
// insertan filas de detalle.
type txExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}
