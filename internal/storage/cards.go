package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const cardColumns = `id, owner_id, name, kind, brand, last_four, color, total_limit, available_limit,
	closing_day, due_day, is_active, created_at`

// GetCard returns a card by ID, scoped to its owner.
func (s *SQLiteStorage) GetCard(ctx context.Context, ownerID, id string) (*model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ? AND owner_id = ?`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query card: %w", err)
	}

	return card, nil
}

// FindCardByName returns the owner's card with the given name, or nil when there is none.
func (s *SQLiteStorage) FindCardByName(ctx context.Context, ownerID, name string) (*model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = ? AND name = ? COLLATE NOCASE`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, ownerID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query card: %w", err)
	}

	return card, nil
}

// ListCards returns the owner's cards ordered by kind then name.
func (s *SQLiteStorage) ListCards(ctx context.Context, ownerID string, filter model.CardFilter) ([]model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = ?`
	args := []any{ownerID}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	query += ` ORDER BY kind, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
func (s *SQLiteStorage) InsertCard(ctx context.Context, card *model.Card) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCard(card); err != nil {
		return err
	}

	query := `INSERT INTO cards (` + cardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		card.ID, card.OwnerID, card.Name, card.Kind, card.Brand, card.LastFour, card.Color,
		nullDecimal(card.TotalLimit), nullDecimal(card.AvailableLimit),
		nullInt(card.ClosingDay), nullInt(card.DueDay),
		card.IsActive, card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	slog.Info("created new card", "name", card.Name, "id", card.ID, "kind", card.Kind)
	return nil
}

// UpdateCard overwrites the mutable fields of a card.
func (s *SQLiteStorage) UpdateCard(ctx context.Context, card *model.Card) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCard(card); err != nil {
		return err
	}

	query := `
		UPDATE cards
		SET name = ?, brand = ?, last_four = ?, color = ?, total_limit = ?, available_limit = ?,
			closing_day = ?, due_day = ?, is_active = ?
		WHERE id = ? AND owner_id = ?`

	result, err := s.db.ExecContext(ctx, query,
		card.Name, card.Brand, card.LastFour, card.Color,
		nullDecimal(card.TotalLimit), nullDecimal(card.AvailableLimit),
		nullInt(card.ClosingDay), nullInt(card.DueDay),
		card.IsActive, card.ID, card.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	return expectAffected(result, "card", card.ID)
}

// DeleteCard removes a card.
func (s *SQLiteStorage) DeleteCard(ctx context.Context, ownerID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	if err := expectAffected(result, "card", id); err != nil {
		return err
	}

	slog.Info("deleted card", "id", id)
	return nil
}

func scanCard(row rowScanner) (*model.Card, error) {
	var (
		card                  model.Card
		totalLimit, available decimal.NullDecimal
		closingDay, dueDay    sql.NullInt64
	)
	if err := row.Scan(&card.ID, &card.OwnerID, &card.Name, &card.Kind, &card.Brand, &card.LastFour,
		&card.Color, &totalLimit, &available, &closingDay, &dueDay, &card.IsActive, &card.CreatedAt); err != nil {
		return nil, err
	}

	if totalLimit.Valid {
		card.TotalLimit = &totalLimit.Decimal
	}
	if available.Valid {
		card.AvailableLimit = &available.Decimal
	}
	if closingDay.Valid {
		day := int(closingDay.Int64)
		card.ClosingDay = &day
	}
	if dueDay.Valid {
		day := int(dueDay.Int64)
		card.DueDay = &day
	}

	return &card, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
