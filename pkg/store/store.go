// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package store persists all league state in Postgres. Every
// balance-moving operation runs inside one serializable transaction so a
// settlement either fully applies or fully rolls back.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

const serializationFailureCode = "40001"

// Queryer is satisfied by both *sql.DB and *sql.Tx so repository methods
// can run standalone or inside a settlement transaction.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db  *sql.DB
	cfg *config.Config
}

// Open connects to Postgres through the pgx stdlib driver.
func Open(scope *envelope.Scope, cfg *config.Config) (*Store, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)

	pingCtx, cancel := context.WithTimeout(scope.Ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	scope.Log.WithFields(logrus.Fields{
		"maxOpenConns": cfg.DatabaseMaxOpenConns,
		"maxIdleConns": cfg.DatabaseMaxIdleConns,
	}).Info("store connected")

	return &Store{db: db, cfg: cfg}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the pool for read paths that need no transaction.
func (s *Store) DB() Queryer {
	return s.db
}

// NormalizeGuildID clamps negative tenant keys onto the shared zero guild.
// Services validate before this point; the store never sees a negative id.
func NormalizeGuildID(guildID int64) int64 {
	if guildID < 0 {
		return 0
	}
	return guildID
}

// WithTx runs fn inside one serializable transaction, retrying once when
// Postgres reports a serialization failure. A conflict on the retry
// surfaces as ErrStorageConflict.
func (s *Store) WithTx(scope *envelope.Scope, fn func(tx *sql.Tx) error) error {
	err := s.runTx(scope.Ctx, fn)
	if isSerializationFailure(err) {
		scope.Log.Warn("serializable transaction conflicted, retrying once")
		err = s.runTx(scope.Ctx, fn)
		if isSerializationFailure(err) {
			return models.ErrStorageConflict
		}
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback after %v: %w", err, rollbackErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == serializationFailureCode
}
