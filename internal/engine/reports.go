package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// MonthlySummary aggregates the owner's transactions for a competency period. An empty
// period yields zero totals and empty breakdowns.
func (l *Ledger) MonthlySummary(ctx context.Context, ownerID string, month, year int) (*model.MonthlySummary, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	period := ledger.Period{Month: month, Year: year}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	var (
		txns       []model.Transaction
		categories []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = l.storage.ListTransactions(gctx, ownerID, model.TransactionFilter{Month: month, Year: year})
		if err != nil {
			return storageError("transaction", "list", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = l.storage.ListCategories(gctx, ownerID, model.CategoryFilter{})
		if err != nil {
			return storageError("category", "list", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	summary := ledger.Summarize(period, txns, names)
	return &summary, nil
}

// CardStatement lists what one of the owner's cards owes for a competency period: the
// installments falling in the period plus single payments made in it.
func (l *Ledger) CardStatement(ctx context.Context, ownerID, cardID string, month, year int) (*model.CardStatement, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	period := ledger.Period{Month: month, Year: year}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	card, err := l.storage.GetCard(ctx, ownerID, cardID)
	if err != nil {
		return nil, storageError("card", "load", err)
	}

	txns, err := l.storage.ListTransactions(ctx, ownerID, model.TransactionFilter{CardID: cardID})
	if err != nil {
		return nil, storageError("transaction", "list", err)
	}

	var (
		mu           sync.Mutex
		installments = make(map[string][]model.Installment)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.loadLimit)
	for _, txn := range txns {
		if !txn.IsInstallment {
			continue
		}
		g.Go(func() error {
			schedule, err := l.storage.ListInstallments(gctx, txn.ID)
			if err != nil {
				return storageError("installment", "list", err)
			}
			mu.Lock()
			installments[txn.ID] = schedule
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stmt := ledger.BuildCardStatement(*card, period, txns, installments)
	return &stmt, nil
}
