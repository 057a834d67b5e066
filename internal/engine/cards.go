package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// CreateCard adds a card. Names are unique per owner. A credit card starts with its whole
// limit available.
func (l *Ledger) CreateCard(ctx context.Context, ownerID string, in model.CardInput) (*model.Card, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := ledger.ValidateCardInput(in); err != nil {
		return nil, err
	}

	existing, err := l.storage.FindCardByName(ctx, ownerID, in.Name)
	if err != nil {
		return nil, storageError("card", "load", err)
	}
	if err := ledger.ValidateUniqueCardName(existing, ""); err != nil {
		return nil, err
	}

	card := &model.Card{
		ID:         l.newID(),
		OwnerID:    ownerID,
		Name:       in.Name,
		Kind:       in.Kind,
		Brand:      in.Brand,
		LastFour:   in.LastFour,
		Color:      in.Color,
		ClosingDay: in.ClosingDay,
		DueDay:     in.DueDay,
		IsActive:   true,
		CreatedAt:  l.now(),
	}
	if card.Color == "" {
		card.Color = model.DefaultColor
	}
	if in.TotalLimit != nil {
		total := *in.TotalLimit
		available := total
		card.TotalLimit = &total
		card.AvailableLimit = &available
	}

	if err := l.storage.InsertCard(ctx, card); err != nil {
		return nil, storageError("card", "save", err)
	}
	return card, nil
}

// EditCard changes the supplied fields of a card. Changing the total limit shifts the
// available limit by the same amount.
func (l *Ledger) EditCard(ctx context.Context, ownerID, id string, patch model.CardPatch) (*model.Card, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	card, err := l.storage.GetCard(ctx, ownerID, id)
	if err != nil {
		return nil, storageError("card", "load", err)
	}
	if err := ledger.ValidateCardPatch(*card, patch); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		existing, err := l.storage.FindCardByName(ctx, ownerID, name)
		if err != nil {
			return nil, storageError("card", "load", err)
		}
		if err := ledger.ValidateUniqueCardName(existing, card.ID); err != nil {
			return nil, err
		}
		card.Name = name
	}
	if patch.LastFour != nil {
		card.LastFour = *patch.LastFour
	}
	if patch.Color != nil {
		card.Color = *patch.Color
	}
	if patch.Brand != nil {
		card.Brand = *patch.Brand
	}
	if patch.ClosingDay != nil {
		card.ClosingDay = patch.ClosingDay
	}
	if patch.DueDay != nil {
		card.DueDay = patch.DueDay
	}
	if patch.TotalLimit != nil {
		total := *patch.TotalLimit
		available := total
		if card.TotalLimit != nil && card.AvailableLimit != nil {
			available = card.AvailableLimit.Add(total.Sub(*card.TotalLimit))
		}
		card.TotalLimit = &total
		card.AvailableLimit = &available
	}

	if err := l.storage.UpdateCard(ctx, card); err != nil {
		return nil, storageError("card", "update", err)
	}
	return card, nil
}

// ToggleCard flips a card between active and inactive. Inactive cards cannot be used by
// new transactions.
func (l *Ledger) ToggleCard(ctx context.Context, ownerID, id string) (*model.Card, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	card, err := l.storage.GetCard(ctx, ownerID, id)
	if err != nil {
		return nil, storageError("card", "load", err)
	}

	card.IsActive = !card.IsActive
	if err := l.storage.UpdateCard(ctx, card); err != nil {
		return nil, storageError("card", "update", err)
	}

	slog.Info("Toggled card", "id", id, "active", card.IsActive)
	return card, nil
}

// DeleteCard removes a card no transaction refers to. Cards in use must be deactivated
// instead.
func (l *Ledger) DeleteCard(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	if _, err := l.storage.GetCard(ctx, ownerID, id); err != nil {
		return storageError("card", "load", err)
	}

	refs, err := l.storage.CountTransactionsByCard(ctx, ownerID, id)
	if err != nil {
		return storageError("card", "load", err)
	}
	if err := ledger.ValidateDeletable("card", refs); err != nil {
		return err
	}

	if err := l.storage.DeleteCard(ctx, ownerID, id); err != nil {
		return storageError("card", "delete", err)
	}
	return nil
}

// GetCard returns one of the owner's cards.
func (l *Ledger) GetCard(ctx context.Context, ownerID, id string) (*model.Card, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	card, err := l.storage.GetCard(ctx, ownerID, id)
	if err != nil {
		return nil, storageError("card", "load", err)
	}
	return card, nil
}

// ListCards returns the owner's cards ordered by kind then name.
func (l *Ledger) ListCards(ctx context.Context, ownerID string, filter model.CardFilter) ([]model.Card, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, common.NewValidationError("invalid_card_kind", "unknown card kind %q", filter.Kind)
	}

	cards, err := l.storage.ListCards(ctx, ownerID, filter)
	if err != nil {
		return nil, storageError("card", "list", err)
	}
	return cards, nil
}
