package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"recruit_portal_backend/internal/imports/sheet"
)

// Repository writes the monthly staging table.
type Repository interface {
	// ReplaceMonth atomically swaps all rows of one month for rows.
	ReplaceMonth(ctx context.Context, monthKey string, rows []sheet.Row) (int64, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new staging writer.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ReplaceMonth deletes the month and copies the new rows in one transaction,
// so readers see either the old or the new month, never a mix.
func (r *Repo) ReplaceMonth(ctx context.Context, monthKey string, rows []sheet.Row) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM stg_member_monthly WHERE month_text = $1`, monthKey); err != nil {
		return 0, fmt.Errorf("failed to clear month %s: %w", monthKey, err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"stg_member_monthly"},
		sheet.Columns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return rows[i].Values(), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy rows for %s: %w", monthKey, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit month %s: %w", monthKey, err)
	}
	return copied, nil
}
