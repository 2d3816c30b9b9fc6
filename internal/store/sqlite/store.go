// Package sqlite stores the posts of the database listing backend in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"subpager/internal/domain"
	"subpager/internal/listing"
	"subpager/internal/logging"
)

// MemoryDSN opens a private in-memory database
const MemoryDSN = ":memory:"

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its settings in package globals
var migrateMu sync.Mutex

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements listing.PostStore
type Store struct {
	db  *sql.DB
	q   querier
	log *zap.Logger
}

var _ listing.PostStore = (*Store)(nil)

// Open opens the database at path, or MemoryDSN, and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// one connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log := logging.L(logging.CatDB)
	log.Debug("database ready", zap.String("path", path))
	return &Store{db: db, q: db, log: log}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// PostsByCommunity returns the stored posts of community in feed order.
func (s *Store) PostsByCommunity(ctx context.Context, community string) ([]domain.Post, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, community, title, author, score, comment_count,
		       url, thumbnail, body, created_at, index_in_response
		FROM posts
		WHERE community = ?
		ORDER BY index_in_response ASC`, community)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts of %s: %w", community, err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var (
			p       domain.Post
			created int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Community, &p.Title, &p.Author, &p.Score,
			&p.CommentCount, &p.URL, &p.Thumbnail, &p.Body, &created, &p.IndexInResponse); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		if created != 0 {
			p.CreatedAt = time.UnixMilli(created).UTC()
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts of %s: %w", community, err)
	}
	return posts, nil
}

// NextIndex returns one past the highest stored index of community.
func (s *Store) NextIndex(ctx context.Context, community string) (int, error) {
	var next int
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(index_in_response) + 1, 0) FROM posts WHERE community = ?`,
		community).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next index of %s: %w", community, err)
	}
	return next, nil
}

// Insert stores posts, replacing rows with the same community and name.
func (s *Store) Insert(ctx context.Context, posts []domain.Post) error {
	for _, p := range posts {
		var created int64
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.UnixMilli()
		}
		_, err := s.q.ExecContext(ctx, `
			INSERT OR REPLACE INTO posts (
				id, name, community, title, author, score, comment_count,
				url, thumbnail, body, created_at, index_in_response
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Community, p.Title, p.Author, p.Score, p.CommentCount,
			p.URL, p.Thumbnail, p.Body, created, p.IndexInResponse)
		if err != nil {
			return fmt.Errorf("failed to insert post %s: %w", p.Name, err)
		}
	}
	return nil
}

// DeleteByCommunity removes every stored post of community.
func (s *Store) DeleteByCommunity(ctx context.Context, community string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM posts WHERE community = ?`, community); err != nil {
		return fmt.Errorf("failed to delete posts of %s: %w", community, err)
	}
	return nil
}

// RunInTx runs fn in a transaction, committing when it returns nil. Inside a
// transaction it runs fn directly.
func (s *Store) RunInTx(ctx context.Context, fn func(listing.PostStore) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.log.Warn("failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if err := fn(&Store{db: s.db, q: tx, log: s.log}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
