package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"graphboard/internal/domain/repository"
	"graphboard/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

// Pool hands out one connection per request. Waiting for a free connection is
// bounded by waitTimeout; queries themselves are not.
type Pool struct {
	db          *sql.DB
	waitTimeout time.Duration
}

func NewPool(db *sql.DB, waitTimeout time.Duration) *Pool {
	return &Pool{db: db, waitTimeout: waitTimeout}
}

func Connect(ctx context.Context, cfg *config.Config) (*Pool, error) {
	db, err := sql.Open("pgx", cfg.DBConnStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.PoolMaxSize)
	db.SetMaxIdleConns(cfg.PoolMaxSize)
	db.SetConnMaxLifetime(5 * time.Minute)

	pool := NewPool(db, cfg.PoolWaitTimeout)
	if err := pool.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("Successfully connected to PostgreSQL database!")
	return pool, nil
}

// Acquire reserves a connection. Callers must Close it to return it to the pool.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	if p.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.waitTimeout)
		defer cancel()
	}
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, repository.ClassifyDBError("database.Pool.Acquire", err)
	}
	return conn, nil
}

func (p *Pool) Ping(ctx context.Context) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.PingContext(ctx); err != nil {
		return repository.ClassifyDBError("database.Pool.Ping", err)
	}
	return nil
}

func (p *Pool) Close() {
	if p.db != nil {
		p.db.Close()
		log.Println("Database connection closed.")
	}
}
