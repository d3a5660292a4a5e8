package store

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nhle/tutor-scheduler/internal/model"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// timestampLayout is how creation timestamps are stored.
const timestampLayout = time.RFC3339Nano

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock replaces the wall clock used for creation timestamps and for
// the today/upcoming queries.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string, logger *zap.Logger, opts ...Option) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Single connection; each ":memory:" connection is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations applies the embedded goose migrations that are not yet
// recorded in the database.
func (s *SQLiteStore) runMigrations(ctx context.Context) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db.DB, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		s.logger.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.String("file", r.Source.Path),
			zap.Duration("took", r.Duration),
		)
	}

	return nil
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// updateByID runs an UPDATE of the given assignments against one row.
// An empty assignment list still checks that the row exists.
func (s *SQLiteStore) updateByID(
	ctx context.Context,
	table, entity string,
	id int64,
	sets []string,
	args []interface{},
) error {
	if len(sets) == 0 {
		var n int
		err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id)
		if err != nil {
			return model.NewStorageError("updating", entity, id, err)
		}
		if n == 0 {
			return model.NotFound("updating", entity, id)
		}
		return nil
	}

	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return model.NewStorageError("updating", entity, id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return model.NotFound("updating", entity, id)
	}
	return nil
}

// deleteByID removes one row, failing when it does not exist.
func (s *SQLiteStore) deleteByID(ctx context.Context, table, entity string, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return model.NewStorageError("deleting", entity, id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return model.NotFound("deleting", entity, id)
	}

	s.logger.Debug("record deleted", zap.String("entity", entity), zap.Int64("id", id))
	return nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableID maps a zero id to NULL so SQLite assigns the next rowid.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// jsonText marshals v for storage in a TEXT column.
func jsonText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshaling %T: %w", v, err)
	}
	return string(b), nil
}
