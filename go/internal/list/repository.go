package list

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/boardsync/go/internal/models"
)

// Repository persists lists in postgres. Cascades to the cards table are done
// here so archiving or deleting a list is one round trip per statement.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const listColumns = `id, board_id, title, position, is_archived, created_at, updated_at`

func (r *Repository) InsertList(ctx context.Context, l *models.List) (*models.List, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lists (id, board_id, title, position, is_archived)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+listColumns,
		l.ID, l.BoardID, l.Title, l.Position, l.IsArchived,
	)

	inserted, err := scanList(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert list: %w", err)
	}
	return inserted, nil
}

func (r *Repository) GetList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+listColumns+` FROM lists WHERE id = $1`, id)

	l, err := scanList(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return l, nil
}

func (r *Repository) GetListsByBoard(ctx context.Context, boardID uuid.UUID) ([]models.List, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listColumns+`
		FROM lists
		WHERE board_id = $1 AND is_archived = false
		ORDER BY position, updated_at`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get lists by board: %w", err)
	}
	defer rows.Close()

	var lists []models.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (r *Repository) MaxPositionInBoard(ctx context.Context, boardID uuid.UUID) (*float64, error) {
	var max *float64
	err := r.pool.QueryRow(ctx, `
		SELECT MAX(position) FROM lists WHERE board_id = $1 AND is_archived = false`,
		boardID,
	).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("failed to get max list position: %w", err)
	}
	return max, nil
}

func (r *Repository) UpdateListFields(ctx context.Context, id uuid.UUID, req UpdateListFieldsRequest) (*models.List, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE lists SET title = COALESCE($2, title), updated_at = now()
		WHERE id = $1
		RETURNING `+listColumns,
		id, req.Title,
	)

	l, err := scanList(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to update list fields: %w", err)
	}
	return l, nil
}

// UpdateListPosition is the single-row authoritative reorder write.
func (r *Repository) UpdateListPosition(ctx context.Context, id uuid.UUID, pos float64) (*models.List, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE lists SET position = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+listColumns,
		id, pos,
	)

	l, err := scanList(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to update list position: %w", err)
	}
	return l, nil
}

// SetListArchived soft-deletes a list and cascades the archive to its cards.
func (r *Repository) SetListArchived(ctx context.Context, id uuid.UUID, archived bool) (*models.List, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE lists SET is_archived = $2, updated_at = now() WHERE id = $1
		RETURNING `+listColumns,
		id, archived,
	)

	l, err := scanList(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to set list archived: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `
		UPDATE cards SET is_archived = $2, updated_at = now() WHERE list_id = $1`,
		id, archived,
	); err != nil {
		return nil, fmt.Errorf("failed to cascade archive to cards: %w", err)
	}
	return l, nil
}

// DeleteList removes a list and its cards permanently.
func (r *Repository) DeleteList(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE list_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete cards of list: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListNotFound
	}
	return nil
}

func scanList(row pgx.Row) (*models.List, error) {
	var l models.List
	err := row.Scan(&l.ID, &l.BoardID, &l.Title, &l.Position, &l.IsArchived, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
