// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Storage defines the contract for our persistence layer. Every lookup is scoped by owner;
// a row owned by someone else is reported as not found.
type Storage interface {
	// Category operations
	GetCategory(ctx context.Context, ownerID, id string) (*model.Category, error)
	FindCategoryByName(ctx context.Context, ownerID, name string, categoryType model.TransactionType) (*model.Category, error)
	ListCategories(ctx context.Context, ownerID string, filter model.CategoryFilter) ([]model.Category, error)
	InsertCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, ownerID, id string) error

	// Card operations
	GetCard(ctx context.Context, ownerID, id string) (*model.Card, error)
	FindCardByName(ctx context.Context, ownerID, name string) (*model.Card, error)
	ListCards(ctx context.Context, ownerID string, filter model.CardFilter) ([]model.Card, error)
	InsertCard(ctx context.Context, card *model.Card) error
	UpdateCard(ctx context.Context, card *model.Card) error
	DeleteCard(ctx context.Context, ownerID, id string) error

	// Transaction operations
	GetTransaction(ctx context.Context, ownerID, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]model.Transaction, error)
	InsertTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, ownerID, id string) error
	CountTransactionsByCategory(ctx context.Context, ownerID, categoryID string) (int, error)
	CountTransactionsByCard(ctx context.Context, ownerID, cardID string) (int, error)

	// Installment operations
	InsertInstallments(ctx context.Context, installments []model.Installment) error
	ListInstallments(ctx context.Context, transactionID string) ([]model.Installment, error)
	GetInstallment(ctx context.Context, id string) (*model.Installment, error)
	UpdateInstallment(ctx context.Context, installment *model.Installment) error
	DeleteInstallments(ctx context.Context, transactionID string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// EventPublisher delivers ledger events to interested subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event model.LedgerEvent) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
