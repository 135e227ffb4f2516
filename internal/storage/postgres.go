package storage

import (
	"context"
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/mselser95/polymarket-seeder/pkg/types"
	"go.uber.org/zap"
)

// Schema creates the tables PostgresStore writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS seeding_runs (
	run_id       UUID PRIMARY KEY,
	generated_at TIMESTAMPTZ NOT NULL,
	format       TEXT NOT NULL,
	examined     INTEGER NOT NULL,
	selected     INTEGER NOT NULL,
	rejections   JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS seeded_markets (
	run_id           UUID NOT NULL REFERENCES seeding_runs(run_id),
	position         INTEGER NOT NULL,
	source_id        TEXT NOT NULL,
	title            TEXT NOT NULL,
	duration_seconds BIGINT NOT NULL,
	ends_at          TIMESTAMPTZ,
	PRIMARY KEY (run_id, position)
);
`

// PostgresStore implements RunStore using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, cfg *PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store, err := newPostgresStore(ctx, db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// newPostgresStore checks the connection and prepares the schema on an open db.
func newPostgresStore(ctx context.Context, db *sql.DB, cfg *PostgresConfig) (*PostgresStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	err := db.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{
		db:     db,
		logger: logger,
	}

	err = store.EnsureSchema(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return store, nil
}

// EnsureSchema creates the run tables if they do not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveRun stores the run and its markets in one transaction.
func (p *PostgresStore) SaveRun(ctx context.Context, run *types.SelectionRun) (err error) {
	rejections, err := json.Marshal(run.Rejections)
	if err != nil {
		return fmt.Errorf("marshal rejections: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO seeding_runs (run_id, generated_at, format, examined, selected, rejections)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID,
		run.GeneratedAt,
		run.Format,
		run.Examined,
		len(run.Markets),
		string(rejections),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, m := range run.Markets {
		var endsAt any
		if !m.EndsAt.IsZero() {
			endsAt = m.EndsAt
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO seeded_markets (run_id, position, source_id, title, duration_seconds, ends_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			run.ID,
			i,
			m.SourceID,
			m.Title,
			m.Duration,
			endsAt,
		)
		if err != nil {
			return fmt.Errorf("insert market %d: %w", i, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	p.logger.Debug("run-stored",
		zap.String("run-id", run.ID),
		zap.Int("markets", len(run.Markets)))

	return nil
}

// Close closes the database connection.
func (p *PostgresStore) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
