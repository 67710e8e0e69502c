package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Totarae/shortlinks/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS links (
  code         TEXT    PRIMARY KEY,
  long_url     TEXT    NOT NULL,
  clicks       INTEGER NOT NULL DEFAULT 0,
  created_at   INTEGER NOT NULL,
  last_clicked INTEGER
);

CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at DESC);
`

const linkColumns = `code, long_url, clicks, created_at, last_clicked`

// SQLiteStore хранилище ссылок в SQLite. Время хранится в миллисекундах Unix.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite открывает (или создаёт) базу по пути path и создаёт схему.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// одно соединение: для ":memory:" каждое соединение видит свою базу
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close закрывает базу.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert сохраняет новую ссылку. Уникальность кода обеспечивает первичный ключ.
func (s *SQLiteStore) Insert(ctx context.Context, code, longURL string) (*model.Link, error) {
	query := `INSERT INTO links (code, long_url, clicks, created_at)
              VALUES (?, ?, 0, ?)
              RETURNING ` + linkColumns

	link, err := scanSQLiteLink(s.db.QueryRowContext(ctx, query, code, longURL, s.now().UnixMilli()))
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, model.ErrDuplicateCode
		}
		return nil, fmt.Errorf("sqlite insert error: %w", err)
	}
	return link, nil
}

// Get возвращает ссылку по коду.
func (s *SQLiteStore) Get(ctx context.Context, code string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE code = ?`
	return s.one(s.db.QueryRowContext(ctx, query, code))
}

// List возвращает все ссылки, новые первыми.
func (s *SQLiteStore) List(ctx context.Context) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links ORDER BY created_at DESC, rowid DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	links := make([]*model.Link, 0)
	for rows.Next() {
		link, err := scanSQLiteLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return links, nil
}

// Delete удаляет ссылку и возвращает удалённую запись.
func (s *SQLiteStore) Delete(ctx context.Context, code string) (*model.Link, error) {
	query := `DELETE FROM links WHERE code = ? RETURNING ` + linkColumns
	return s.one(s.db.QueryRowContext(ctx, query, code))
}

// RecordClick увеличивает счётчик одним UPDATE, без предварительного чтения.
func (s *SQLiteStore) RecordClick(ctx context.Context, code string) (*model.Link, error) {
	query := `UPDATE links
              SET clicks = clicks + 1, last_clicked = ?
              WHERE code = ?
              RETURNING ` + linkColumns
	return s.one(s.db.QueryRowContext(ctx, query, s.now().UnixMilli(), code))
}

// Ping проверяет доступность базы.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) one(row *sql.Row) (*model.Link, error) {
	link, err := scanSQLiteLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrLinkNotFound
		}
		return nil, fmt.Errorf("sqlite query error: %w", err)
	}
	return link, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLink(row rowScanner) (*model.Link, error) {
	var (
		link        model.Link
		createdAt   int64
		lastClicked sql.NullInt64
	)
	if err := row.Scan(&link.Code, &link.LongURL, &link.Clicks, &createdAt, &lastClicked); err != nil {
		return nil, err
	}
	link.CreatedAt = time.UnixMilli(createdAt).UTC()
	if lastClicked.Valid {
		t := time.UnixMilli(lastClicked.Int64).UTC()
		link.LastClicked = &t
	}
	return &link, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// без расширенных кодов: в этой таблице нарушается только ключ
		return true
	}
	return false
}
