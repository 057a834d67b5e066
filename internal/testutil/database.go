// Package testutil provides test utilities for the ledger: an isolated in-memory
// database seeded with fixture categories and cards, a storage wrapper that injects
// failures, and an event recorder.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// DefaultOwner owns every seeded fixture row.
const DefaultOwner = "owner-test"

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	Categories map[CategoryName]model.Category
	Cards      map[CardName]model.Card
	t          *testing.T
	Owner      string
}

// SetupTestDB creates a new in-memory test database seeded with the given fixture.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.FixtureBasic)
//	groceries := db.MustCategory(testutil.CategoryGroceries)
func SetupTestDB(t *testing.T, fixture Fixture) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{
		Storage:    store,
		Categories: make(map[CategoryName]model.Category),
		Cards:      make(map[CardName]model.Card),
		Owner:      DefaultOwner,
		t:          t,
	}

	created := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

	for _, seed := range fixture.Categories {
		cat := model.Category{
			ID:        "cat-" + slug(string(seed.Name)),
			OwnerID:   db.Owner,
			Name:      string(seed.Name),
			Type:      seed.Type,
			Color:     model.DefaultColor,
			Icon:      model.DefaultCategoryIcon,
			IsActive:  true,
			CreatedAt: created,
		}
		if err := store.InsertCategory(ctx, &cat); err != nil {
			t.Fatalf("failed to seed category %q: %v", seed.Name, err)
		}
		db.Categories[seed.Name] = cat
	}

	for _, seed := range fixture.Cards {
		card := model.Card{
			ID:        "card-" + slug(string(seed.Name)),
			OwnerID:   db.Owner,
			Name:      string(seed.Name),
			Kind:      seed.Kind,
			Brand:     model.BrandVisa,
			LastFour:  "4242",
			Color:     model.DefaultColor,
			IsActive:  !seed.Inactive,
			CreatedAt: created,
		}
		if seed.Kind == model.CardKindCredit {
			limit := decimal.NewFromInt(5000)
			available := limit
			closing, due := 3, 10
			card.TotalLimit = &limit
			card.AvailableLimit = &available
			card.ClosingDay = &closing
			card.DueDay = &due
		}
		if err := store.InsertCard(ctx, &card); err != nil {
			t.Fatalf("failed to seed card %q: %v", seed.Name, err)
		}
		db.Cards[seed.Name] = card
	}

	return db
}

// MustCategory returns the seeded category with the given name or fails the test.
func (db *TestDB) MustCategory(name CategoryName) model.Category {
	db.t.Helper()
	cat, ok := db.Categories[name]
	if !ok {
		db.t.Fatalf("category %q was not seeded", name)
	}
	return cat
}

// MustCard returns the seeded card with the given name or fails the test.
func (db *TestDB) MustCard(name CardName) model.Card {
	db.t.Helper()
	card, ok := db.Cards[name]
	if !ok {
		db.t.Fatalf("card %q was not seeded", name)
	}
	return card
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
