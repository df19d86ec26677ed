package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"brecimport/internal/catalog"
	"brecimport/internal/logging"
	"brecimport/internal/recording"
	"brecimport/internal/services"
)

// Store is the catalog port backed by the catalog database file.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	schema Schema
	logger *slog.Logger
}

var (
	_ catalog.Backend       = (*Store)(nil)
	_ catalog.Transactional = (*Store)(nil)
)

// Open connects to an existing catalog database. Failures are tagged
// services.ErrSetup since nothing can be imported without the store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	ctx = ensureContext(ctx)
	logger = logging.NewComponentLogger(logger, "sqlitestore")

	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrSetup, "open", "catalog database", "path is required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrSetup, "open", "catalog database", path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrSetup, "open", "catalog database", path+" is a directory", nil)
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrSetup, "open", "acquire lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrSetup, "open", "acquire lock", "another import is already running against "+path, nil)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, services.Wrap(services.ErrSetup, "open", "open sqlite db", path, err)
	}
	// One connection keeps the per-file transaction and the checks on the same handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, services.Wrap(services.ErrSetup, "open", "apply pragma", pragma, execErr)
		}
	}

	schema, err := probeSchema(ctx, db)
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, services.Wrap(services.ErrSetup, "open", "probe schema", path, err)
	}
	logger.Debug("catalog schema detected",
		logging.String("path", path),
		logging.Bool("danmaku_columns", schema.HasDanmaku),
		logging.Bool("cid_column", schema.HasCID),
		logging.Bool("duration_column", schema.HasDuration),
		logging.Bool("rooms_soft_delete", schema.RoomsSoftDelete),
	)

	return &Store{db: db, path: path, lock: lock, schema: schema, logger: logger}, nil
}

// Schema reports the capabilities detected at open.
func (s *Store) Schema() Schema {
	return s.schema
}

// Close closes the database and releases the run lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("release lock: %w", unlockErr))
		}
	}
	return err
}

// RoomExists reports whether roomID is registered and, where the catalog
// supports it, not soft-deleted.
func (s *Store) RoomExists(ctx context.Context, roomID string) (bool, error) {
	query := "SELECT 1 FROM " + tableRooms + " WHERE room_id = ?"
	if s.schema.RoomsSoftDelete {
		query += " AND deleted_at IS NULL"
	}
	return s.exists(ctx, query+" LIMIT 1", roomID)
}

// PartExists reports whether a part with this container path was already imported.
func (s *Store) PartExists(ctx context.Context, containerPath string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM "+tableParts+" WHERE file_path = ? LIMIT 1", containerPath)
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	ctx = ensureContext(ctx)
	var found bool
	err := retryOnBusy(ctx, func() error {
		var one int
		err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			found = false
			return nil
		case err != nil:
			return err
		default:
			found = true
			return nil
		}
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// ResolveOrCreateSession writes outside a transaction; prefer Atomically.
func (s *Store) ResolveOrCreateSession(ctx context.Context, candidate recording.Candidate) (catalog.SessionRef, error) {
	return s.writer(s.db).ResolveOrCreateSession(ctx, candidate)
}

// CreatePart writes outside a transaction; prefer Atomically.
func (s *Store) CreatePart(ctx context.Context, session catalog.SessionRef, candidate recording.Candidate) error {
	return s.writer(s.db).CreatePart(ctx, session, candidate)
}

// Atomically runs fn in one transaction. Any error rolls back every write fn
// made. The whole attempt is retried while SQLite reports the database busy.
func (s *Store) Atomically(ctx context.Context, fn func(catalog.Writer) error) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if err := fn(s.writer(tx)); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("rollback failed", logging.Error(rbErr))
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}
