package samplestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	mu        sync.RWMutex
	closeOnce sync.Once

	insertBatchStmt  *sql.Stmt
	insertSampleStmt *sql.Stmt
	loadBatchStmt    *sql.Stmt
	loadSamplesStmt  *sql.Stmt
	deleteStmt       *sql.Stmt
}

// NewSQLiteStore opens (creating if necessary) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sample_batches (
		id TEXT PRIMARY KEY,
		parameter_id TEXT NOT NULL,
		prior TEXT NOT NULL,
		scaled INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		batch_id TEXT NOT NULL REFERENCES sample_batches(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (batch_id, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_batches_parameter ON sample_batches(parameter_id);
	CREATE INDEX IF NOT EXISTS idx_batches_created ON sample_batches(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertBatchStmt, err = s.db.Prepare(`
		INSERT INTO sample_batches (id, parameter_id, prior, scaled, seed, count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert batch statement: %w", err)
	}

	s.insertSampleStmt, err = s.db.Prepare(`
		INSERT INTO samples (batch_id, idx, value) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert sample statement: %w", err)
	}

	s.loadBatchStmt, err = s.db.Prepare(`
		SELECT id, parameter_id, prior, scaled, seed, count, created_at
		FROM sample_batches
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load batch statement: %w", err)
	}

	s.loadSamplesStmt, err = s.db.Prepare(`
		SELECT value FROM samples WHERE batch_id = ? ORDER BY idx
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load samples statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM sample_batches WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	return nil
}

// SaveBatch stores b and its values in one transaction.
func (s *SQLiteStore) SaveBatch(ctx context.Context, b *Batch) error {
	if err := prepare(b); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.StmtContext(ctx, s.insertBatchStmt).ExecContext(ctx,
		b.ID, b.ParameterID, b.Prior, b.Scaled, int64(b.Seed), b.Count, b.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	insert := tx.StmtContext(ctx, s.insertSampleStmt)
	for i, v := range b.Values {
		if _, err := insert.ExecContext(ctx, b.ID, i, v); err != nil {
			return fmt.Errorf("failed to save sample %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*Batch, error) {
	var (
		b         Batch
		seed      int64
		createdAt int64
	)
	if err := row.Scan(&b.ID, &b.ParameterID, &b.Prior, &b.Scaled, &seed, &b.Count, &createdAt); err != nil {
		return nil, err
	}
	b.Seed = uint64(seed)
	b.CreatedAt = time.Unix(0, createdAt).UTC()
	return &b, nil
}

// Batch loads a batch and its values.
func (s *SQLiteStore) Batch(ctx context.Context, id string) (*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := scanBatch(s.loadBatchStmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}

	rows, err := s.loadSamplesStmt.QueryContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	defer rows.Close()

	b.Values = make([]float64, 0, b.Count)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		b.Values = append(b.Values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}
	return b, nil
}

// ListBatches returns batch summaries ordered by creation time.
func (s *SQLiteStore) ListBatches(ctx context.Context, parameterID string) ([]*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, parameter_id, prior, scaled, seed, count, created_at FROM sample_batches`
	var args []any
	if parameterID != "" {
		query += ` WHERE parameter_id = ?`
		args = append(args, parameterID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var out []*Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}
	return out, nil
}

// DeleteBatch removes a batch and its samples.
func (s *SQLiteStore) DeleteBatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.deleteStmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sample store unavailable: %w", err)
	}
	return nil
}

// Close releases the database. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{
			s.insertBatchStmt, s.insertSampleStmt, s.loadBatchStmt, s.loadSamplesStmt, s.deleteStmt,
		} {
			if stmt != nil {
				stmt.Close()
			}
		}
		closeErr = s.db.Close()
	})
	return closeErr
}

var _ Store = (*SQLiteStore)(nil)
