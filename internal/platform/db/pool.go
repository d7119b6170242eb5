package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	DatabaseURL string
	MaxConns    int32
	MinConns    int32
}

// NewPool opens a pgx pool and verifies it with a ping. Connection failures
// come back classified so callers can report them like any other store error.
func NewPool(ctx context.Context, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(pc.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		cfg.MinConns = pc.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, Classify("create connection pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, Classify("ping database", err)
	}

	return pool, nil
}

// Gorm is an ORM session that borrows connections from a pgx pool. Close
// releases the database/sql wrapper only; the pool stays owned by its creator.
type Gorm struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// OpenGorm layers gorm over pool through pgx's database/sql adapter so both
// store drivers share one set of connections.
func OpenGorm(pool *pgxpool.Pool) (*Gorm, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm session: %w", err)
	}
	return &Gorm{DB: gdb, sqlDB: sqlDB}, nil
}

func (g *Gorm) Close() error {
	return g.sqlDB.Close()
}
