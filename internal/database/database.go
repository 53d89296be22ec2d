package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"threadline/internal/config"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service wraps the SQL connection pool with health reporting.
type Service interface {
	DB() *sql.DB
	Health() map[string]string
	Close() error
}

type service struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens a PostgreSQL connection pool and verifies connectivity,
// retrying with fibonacci backoff so the API survives the database
// coming up slightly later (compose, CI containers).
func New(cfg *config.Config, logger *zap.Logger) (Service, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
		cfg.Database.Schema,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Database not ready, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &service{db: db, logger: logger}, nil
}

// DB exposes the underlying pool for repositories and migrations.
func (s *service) DB() *sql.DB {
	return s.db
}

// Health returns connectivity and pool statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	poolStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(poolStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(poolStats.InUse)
	stats["idle"] = strconv.Itoa(poolStats.Idle)

	return stats
}

func (s *service) Close() error {
	s.logger.Info("Closing database connection pool")
	return s.db.Close()
}
