package card

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/boardsync/go/internal/models"
)

// Repository persists cards in postgres. Labels and checklist are stored as
// jsonb columns.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const cardColumns = `id, list_id, board_id, title, description, position, priority, due_date, labels, checklist, is_archived, created_at, updated_at`

func (r *Repository) InsertCard(ctx context.Context, c *models.Card) (*models.Card, error) {
	labels, checklist, err := marshalCardJSON(c)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO cards (id, list_id, board_id, title, description, position, priority, due_date, labels, checklist, is_archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+cardColumns,
		c.ID, c.ListID, c.BoardID, c.Title, c.Description, c.Position, c.Priority, c.DueDate, labels, checklist, c.IsArchived,
	)

	inserted, err := scanCard(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert card: %w", err)
	}
	return inserted, nil
}

func (r *Repository) GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)

	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return c, nil
}

// GetCardsByList returns the non-archived cards of a list ordered by
// (position, updated_at). The updated_at tiebreak makes the final order of
// two concurrent moves into the same gap deterministic.
func (r *Repository) GetCardsByList(ctx context.Context, listID uuid.UUID) ([]models.Card, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE list_id = $1 AND is_archived = false
		ORDER BY position, updated_at`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards by list: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

// MaxPositionInList returns the highest position among a list's non-archived
// cards, or nil when the list is empty.
func (r *Repository) MaxPositionInList(ctx context.Context, listID uuid.UUID) (*float64, error) {
	var max *float64
	err := r.pool.QueryRow(ctx, `
		SELECT MAX(position) FROM cards WHERE list_id = $1 AND is_archived = false`,
		listID,
	).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("failed to get max card position: %w", err)
	}
	return max, nil
}

func (r *Repository) UpdateCardFields(ctx context.Context, id uuid.UUID, req UpdateCardFieldsRequest) (*models.Card, error) {
	var labels, checklist []byte
	var err error
	if req.Labels != nil {
		if labels, err = json.Marshal(req.Labels); err != nil {
			return nil, fmt.Errorf("failed to marshal labels: %w", err)
		}
	}
	if req.Checklist != nil {
		if checklist, err = json.Marshal(req.Checklist); err != nil {
			return nil, fmt.Errorf("failed to marshal checklist: %w", err)
		}
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE cards SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			priority    = COALESCE($4, priority),
			due_date    = COALESCE($5, due_date),
			labels      = COALESCE($6, labels),
			checklist   = COALESCE($7, checklist),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+cardColumns,
		id, req.Title, req.Description, req.Priority, req.DueDate, labels, checklist,
	)

	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to update card fields: %w", err)
	}
	return c, nil
}

// UpdateCardPlacement atomically rewrites the card's list, denormalized board
// and position as a single row update. This is the authoritative move write.
func (r *Repository) UpdateCardPlacement(ctx context.Context, id, listID, boardID uuid.UUID, pos float64) (*models.Card, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE cards SET list_id = $2, board_id = $3, position = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+cardColumns,
		id, listID, boardID, pos,
	)

	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to update card placement: %w", err)
	}
	return c, nil
}

// BulkUpdatePositions applies a rebalance batch in one round trip.
func (r *Repository) BulkUpdatePositions(ctx context.Context, updates []PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE cards SET position = $2, updated_at = now() WHERE id = $1`, u.ID, u.Position)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range updates {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to bulk update positions: %w", err)
		}
	}
	return nil
}

func (r *Repository) SetCardArchived(ctx context.Context, id uuid.UUID, archived bool) (*models.Card, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE cards SET is_archived = $2, updated_at = now() WHERE id = $1
		RETURNING `+cardColumns,
		id, archived,
	)

	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to set card archived: %w", err)
	}
	return c, nil
}

func (r *Repository) DeleteCard(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCardNotFound
	}
	return nil
}

func marshalCardJSON(c *models.Card) (labels, checklist []byte, err error) {
	if labels, err = json.Marshal(c.Labels); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal labels: %w", err)
	}
	if checklist, err = json.Marshal(c.Checklist); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal checklist: %w", err)
	}
	return labels, checklist, nil
}

func scanCard(row pgx.Row) (*models.Card, error) {
	var c models.Card
	var labels, checklist []byte
	err := row.Scan(
		&c.ID, &c.ListID, &c.BoardID, &c.Title, &c.Description, &c.Position,
		&c.Priority, &c.DueDate, &labels, &checklist, &c.IsArchived,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &c.Labels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
		}
	}
	if len(checklist) > 0 {
		if err := json.Unmarshal(checklist, &c.Checklist); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checklist: %w", err)
		}
	}
	return &c, nil
}
