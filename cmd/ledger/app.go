package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/engine"
	"github.com/Veraticus/spice-ledger/internal/events"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/Veraticus/spice-ledger/internal/storage/postgres"
)

// app is what every ledger command runs against.
type app struct {
	ledger  *engine.Ledger
	store   service.Storage
	owner   string
	closers []func() error
}

// openApp validates the configuration, opens and migrates storage, and wires the engine.
func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	owner, err := cfg.RequireOwner()
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{store: store, owner: owner, closers: []func() error{store.Close}}

	engineCfg := engine.DefaultConfig()
	if cfg.AMQPURL != "" {
		publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.Exchange)
		if err != nil {
			// Events are notifications; the ledger works without them.
			slog.Warn("Event publishing disabled", "error", err)
		} else {
			engineCfg.Publisher = publisher
			a.closers = append(a.closers, publisher.Close)
		}
	}

	a.ledger = engine.NewWithConfig(store, engineCfg)
	return a, nil
}

// initStorage opens the configured backend and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (service.Storage, error) {
	var (
		store service.Storage
		err   error
	)

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		store, err = postgres.NewStore(ctx, cfg.DatabaseDSN)
	default:
		store, err = storage.NewSQLiteStorage(cfg.DatabasePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("Failed to close resource", "error", err)
		}
	}
}

// resolveCategory finds a category by ID, falling back to a case-insensitive name match
// among categories of txnType (any type when empty).
func (a *app) resolveCategory(ctx context.Context, ref string, txnType model.TransactionType) (*model.Category, error) {
	cat, err := a.ledger.GetCategory(ctx, a.owner, ref)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	categories, listErr := a.ledger.ListCategories(ctx, a.owner, model.CategoryFilter{Type: txnType})
	if listErr != nil {
		return nil, listErr
	}
	for i := range categories {
		if strings.EqualFold(categories[i].Name, strings.TrimSpace(ref)) {
			return &categories[i], nil
		}
	}
	return nil, err
}

// resolveCard finds a card by ID, falling back to a case-insensitive name match.
func (a *app) resolveCard(ctx context.Context, ref string) (*model.Card, error) {
	card, err := a.ledger.GetCard(ctx, a.owner, ref)
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	cards, listErr := a.ledger.ListCards(ctx, a.owner, model.CardFilter{})
	if listErr != nil {
		return nil, listErr
	}
	for i := range cards {
		if strings.EqualFold(cards[i].Name, strings.TrimSpace(ref)) {
			return &cards[i], nil
		}
	}
	return nil, err
}

// names maps the owner's category and card IDs to their names.
func (a *app) names(ctx context.Context) (map[string]string, map[string]string, error) {
	categories, err := a.ledger.ListCategories(ctx, a.owner, model.CategoryFilter{})
	if err != nil {
		return nil, nil, err
	}
	cards, err := a.ledger.ListCards(ctx, a.owner, model.CardFilter{})
	if err != nil {
		return nil, nil, err
	}

	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	cardNames := make(map[string]string, len(cards))
	for _, c := range cards {
		cardNames[c.ID] = c.Name
	}
	return categoryNames, cardNames, nil
}
