package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Totarae/shortlinks/internal/database"
	"github.com/Totarae/shortlinks/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation SQLSTATE нарушения ограничения уникальности.
const uniqueViolation = "23505"

const linkColumns = `code, long_url, clicks, created_at, last_clicked`

// LinkRepository хранит ссылки в PostgreSQL.
type LinkRepository struct {
	DB *database.DB
}

// NewLinkRepository создаёт новый экземпляр LinkRepository.
func NewLinkRepository(db *database.DB) *LinkRepository {
	return &LinkRepository{DB: db}
}

// Insert сохраняет новую ссылку. Повтор кода отклоняется первичным ключом
// и возвращается как model.ErrDuplicateCode.
func (r *LinkRepository) Insert(ctx context.Context, code, longURL string) (*model.Link, error) {
	query := `INSERT INTO links (code, long_url) 
              VALUES ($1, $2) 
              RETURNING ` + linkColumns

	link, err := scanLink(r.DB.Pool.QueryRow(ctx, query, code, longURL))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, model.ErrDuplicateCode
		}
		return nil, fmt.Errorf("database insert error: %w", err)
	}
	return link, nil
}

// Get извлекает ссылку по коду.
func (r *LinkRepository) Get(ctx context.Context, code string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE code = $1`
	return one(r.DB.Pool.QueryRow(ctx, query, code))
}

// List возвращает все ссылки, новые первыми.
func (r *LinkRepository) List(ctx context.Context) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links ORDER BY created_at DESC, code`
	rows, err := r.DB.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	results := make([]*model.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return results, nil
}

// Delete удаляет ссылку и возвращает удалённую запись.
func (r *LinkRepository) Delete(ctx context.Context, code string) (*model.Link, error) {
	query := `DELETE FROM links WHERE code = $1 RETURNING ` + linkColumns
	return one(r.DB.Pool.QueryRow(ctx, query, code))
}

// RecordClick увеличивает счётчик относительным UPDATE: параллельные
// переходы не теряют приращений.
func (r *LinkRepository) RecordClick(ctx context.Context, code string) (*model.Link, error) {
	query := `UPDATE links 
              SET clicks = clicks + 1, last_clicked = NOW() 
              WHERE code = $1 
              RETURNING ` + linkColumns
	return one(r.DB.Pool.QueryRow(ctx, query, code))
}

// Ping проверяет доступность базы данных.
func (r *LinkRepository) Ping(ctx context.Context) error {
	_, err := r.DB.Pool.Exec(ctx, "SELECT 1")
	return err
}

func one(row pgx.Row) (*model.Link, error) {
	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLinkNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return link, nil
}

func scanLink(row pgx.Row) (*model.Link, error) {
	link := &model.Link{}
	err := row.Scan(&link.Code, &link.LongURL, &link.Clicks, &link.CreatedAt, &link.LastClicked)
	if err != nil {
		return nil, err
	}
	return link, nil
}
