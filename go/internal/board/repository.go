package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/boardsync/go/internal/models"
)

// Repository persists boards in postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const boardColumns = `id, title, description, background, is_archived, created_at, updated_at`

func (r *Repository) InsertBoard(ctx context.Context, b *models.Board) (*models.Board, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO boards (id, title, description, background, is_archived)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+boardColumns,
		b.ID, b.Title, b.Description, b.Background, b.IsArchived,
	)

	inserted, err := scanBoard(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert board: %w", err)
	}
	return inserted, nil
}

func (r *Repository) GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1`, id)

	b, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	return b, nil
}

func (r *Repository) GetBoards(ctx context.Context) ([]models.Board, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+boardColumns+` FROM boards WHERE is_archived = false ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get boards: %w", err)
	}
	defer rows.Close()

	var boards []models.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, *b)
	}
	return boards, rows.Err()
}

func (r *Repository) UpdateBoard(ctx context.Context, id uuid.UUID, req UpdateBoardRequest) (*models.Board, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE boards SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			background  = COALESCE($4, background),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+boardColumns,
		id, req.Title, req.Description, req.Background,
	)

	b, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to update board: %w", err)
	}
	return b, nil
}

// SetBoardArchived soft-deletes a board and cascades the archive intent to
// its lists and cards.
func (r *Repository) SetBoardArchived(ctx context.Context, id uuid.UUID, archived bool) (*models.Board, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE boards SET is_archived = $2, updated_at = now() WHERE id = $1
		RETURNING `+boardColumns,
		id, archived,
	)

	b, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to set board archived: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `
		UPDATE lists SET is_archived = $2, updated_at = now() WHERE board_id = $1`,
		id, archived,
	); err != nil {
		return nil, fmt.Errorf("failed to cascade archive to lists: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `
		UPDATE cards SET is_archived = $2, updated_at = now() WHERE board_id = $1`,
		id, archived,
	); err != nil {
		return nil, fmt.Errorf("failed to cascade archive to cards: %w", err)
	}
	return b, nil
}

// DeleteBoard removes a board with all of its lists and cards.
func (r *Repository) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE board_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete cards of board: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE board_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete lists of board: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBoardNotFound
	}
	return nil
}

func scanBoard(row pgx.Row) (*models.Board, error) {
	var b models.Board
	err := row.Scan(&b.ID, &b.Title, &b.Description, &b.Background, &b.IsArchived, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
