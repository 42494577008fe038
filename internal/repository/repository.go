package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/campaign-tracker/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	Pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	// Настрока пула соединений
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

// InitSchema создаёт таблицы кампаний и логов кликов, если их ещё нет
func (db *PostgresDB) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS campaigns (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			subject TEXT NOT NULL,
			message TEXT NOT NULL,
			recipients TEXT[] NOT NULL DEFAULT '{}',
			sent_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS campaign_clicks (
			id BIGSERIAL PRIMARY KEY,
			campaign_id UUID NOT NULL,
			email TEXT NOT NULL,
			clicked_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_campaign_clicks_campaign_id
			ON campaign_clicks (campaign_id);

		CREATE TABLE IF NOT EXISTS click_events (
			id UUID PRIMARY KEY,
			campaign_id UUID NOT NULL,
			email TEXT NOT NULL,
			token TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			ip TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			referrer TEXT NOT NULL DEFAULT '',
			accept_language TEXT NOT NULL DEFAULT '',
			forwarded_for TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_click_events_campaign_ts
			ON click_events (campaign_id, ts DESC);
		CREATE INDEX IF NOT EXISTS idx_click_events_token
			ON click_events (token);
		CREATE INDEX IF NOT EXISTS idx_click_events_ts
			ON click_events (ts);
	`

	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}

	return nil
}

func (db *PostgresDB) Close() {
	db.Pool.Close()
}
