package lock

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresLocker holds a session-level advisory lock on a dedicated
// connection. The lock is dropped by the server if the connection dies.
type PostgresLocker struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewPostgresLocker(db *gorm.DB, logger *zap.Logger) *PostgresLocker {
	return &PostgresLocker{DB: db, Logger: logger}
}

func (l *PostgresLocker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	if l == nil || l.DB == nil {
		return nil, false, errors.New("postgres locker db is nil")
	}
	sqlDB, err := l.DB.DB()
	if err != nil {
		return nil, false, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, false, err
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock(hashtext($1))", key).Scan(&acquired); err != nil {
		_ = conn.Close()
		return nil, false, err
	}
	if !acquired {
		_ = conn.Close()
		return nil, false, nil
	}

	var once sync.Once
	return func() { once.Do(func() { l.unlock(conn, key) }) }, true, nil
}

func (l *PostgresLocker) unlock(conn *sql.Conn, key string) {
	defer conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_unlock(hashtext($1))", key); err != nil && l.Logger != nil {
		l.Logger.Warn("advisory unlock failed", zap.String("key", key), zap.Error(err))
	}
}
