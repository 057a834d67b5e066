package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// Numeric columns are read back as text so decimal.Decimal keeps the exact value.
const cardColumns = `id, owner_id, name, kind, brand, last_four, color, total_limit::text,
	available_limit::text, closing_day, due_day, is_active, created_at`

const cardInsertColumns = `id, owner_id, name, kind, brand, last_four, color, total_limit,
	available_limit, closing_day, due_day, is_active, created_at`

// GetCard returns a card by ID, scoped to its owner.
func (s *Store) GetCard(ctx context.Context, ownerID, id string) (*model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 AND owner_id = $2`

	card, err := scanCard(s.pool.QueryRow(ctx, query, id, ownerID))
	if nf := notFound(err, "card", id); nf != nil {
		return nil, nf
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query card: %w", err)
	}

	return card, nil
}

// FindCardByName returns the owner's card with the given name, ignoring case, or nil when
// there is none.
func (s *Store) FindCardByName(ctx context.Context, ownerID, name string) (*model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = $1 AND lower(name) = lower($2)`

	card, err := scanCard(s.pool.QueryRow(ctx, query, ownerID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query card: %w", err)
	}

	return card, nil
}

// ListCards returns the owner's cards ordered by kind then name.
func (s *Store) ListCards(ctx context.Context, ownerID string, filter model.CardFilter) ([]model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = $1`
	args := []any{ownerID}
	if filter.Kind != "" {
		query += ` AND kind = $2`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY kind, name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

// InsertCard stores a new card.
func (s *Store) InsertCard(ctx context.Context, card *model.Card) error {
	if card == nil {
		return fmt.Errorf("%w: card", storage.ErrNilParameter)
	}

	query := `INSERT INTO cards (` + cardInsertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, query,
		card.ID, card.OwnerID, card.Name, string(card.Kind), string(card.Brand), card.LastFour, card.Color,
		numericText(card.TotalLimit), numericText(card.AvailableLimit),
		card.ClosingDay, card.DueDay, card.IsActive, card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	slog.Info("created new card", "name", card.Name, "id", card.ID, "kind", card.Kind)
	return nil
}

// UpdateCard overwrites the mutable fields of a card.
func (s *Store) UpdateCard(ctx context.Context, card *model.Card) error {
	if card == nil {
		return fmt.Errorf("%w: card", storage.ErrNilParameter)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE cards
		SET name = $1, brand = $2, last_four = $3, color = $4, total_limit = $5::numeric,
			available_limit = $6::numeric, closing_day = $7, due_day = $8, is_active = $9
		WHERE id = $10 AND owner_id = $11`,
		card.Name, string(card.Brand), card.LastFour, card.Color,
		numericText(card.TotalLimit), numericText(card.AvailableLimit),
		card.ClosingDay, card.DueDay, card.IsActive, card.ID, card.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	return expectAffected(tag, "card", card.ID)
}

// DeleteCard removes a card.
func (s *Store) DeleteCard(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	return expectAffected(tag, "card", id)
}

func scanCard(row rowScanner) (*model.Card, error) {
	var (
		card                  model.Card
		kind, brand           string
		totalLimit, available *string
	)
	if err := row.Scan(&card.ID, &card.OwnerID, &card.Name, &kind, &brand, &card.LastFour,
		&card.Color, &totalLimit, &available, &card.ClosingDay, &card.DueDay, &card.IsActive,
		&card.CreatedAt); err != nil {
		return nil, err
	}
	card.Kind = model.CardKind(kind)
	card.Brand = model.CardBrand(brand)

	var err error
	if card.TotalLimit, err = parseNumeric(totalLimit); err != nil {
		return nil, err
	}
	if card.AvailableLimit, err = parseNumeric(available); err != nil {
		return nil, err
	}

	return &card, nil
}

func numericText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func parseNumeric(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse numeric %q: %w", *s, err)
	}
	return &d, nil
}
