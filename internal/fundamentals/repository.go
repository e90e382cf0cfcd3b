package fundamentals

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"stock-analyst/config"
)

// Repository reads financial statements from PostgreSQL. It implements
// StatementSource.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository connects a pool with conservative sizing and verifies the
// connection before returning.
func NewRepository(cfg config.PostgresConfig) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// Migrate creates the statements table when it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS fundamental_statements (
			id SERIAL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			report_date DATE NOT NULL,
			period VARCHAR(4) NOT NULL,
			revenue DOUBLE PRECISION,
			net_income DOUBLE PRECISION,
			eps DOUBLE PRECISION,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (symbol, report_date, period)
		)`)
	if err != nil {
		return fmt.Errorf("migrate fundamental_statements: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_fundamental_statements_symbol_date
		 ON fundamental_statements (symbol, report_date DESC)`)
	if err != nil {
		return fmt.Errorf("index fundamental_statements: %w", err)
	}
	return nil
}

// RecentStatements returns up to limit statements for the symbol, newest
// first. No rows is not an error; the scorer treats an empty slice as
// neutral.
func (r *Repository) RecentStatements(ctx context.Context, symbol string, limit int) ([]Statement, error) {
	query := `
		SELECT symbol, report_date, period, revenue, net_income, eps
		FROM fundamental_statements
		WHERE symbol = $1
		ORDER BY report_date DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query statements for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []Statement
	for rows.Next() {
		var st Statement
		if err := rows.Scan(&st.Symbol, &st.ReportDate, &st.Period, &st.Revenue, &st.NetIncome, &st.EPS); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpsertStatement stores one reporting period, replacing an earlier load
// of the same period.
func (r *Repository) UpsertStatement(ctx context.Context, st Statement) error {
	query := `
		INSERT INTO fundamental_statements (symbol, report_date, period, revenue, net_income, eps)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, report_date, period)
		DO UPDATE SET revenue = $4, net_income = $5, eps = $6
	`
	_, err := r.pool.Exec(ctx, query, st.Symbol, st.ReportDate, st.Period, st.Revenue, st.NetIncome, st.EPS)
	if err != nil {
		return fmt.Errorf("upsert statement %s %s: %w", st.Symbol, st.Period, err)
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close() {
	r.pool.Close()
}
