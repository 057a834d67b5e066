// Package engine orchestrates ledger operations: it fetches what the pure rules in the
// ledger package need, applies them, and persists the outcome through an injected storage.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// Ledger is the entry point for every ledger operation. All operations take the owner
// explicitly; nothing owned by someone else is ever visible.
type Ledger struct {
	storage   service.Storage
	publisher service.EventPublisher
	clock     func() time.Time
	newID     func() string
	locks     *keyedMutex
	retry     service.RetryOptions
	loadLimit int
}

// Config holds configuration options for the ledger.
type Config struct {
	// Publisher receives events for committed changes. Nil disables publishing.
	Publisher service.EventPublisher
	Clock     func() time.Time
	NewID     func() string
	// PublishRetry bounds the retries of a single event publication.
	PublishRetry service.RetryOptions
	// LoadConcurrency caps concurrent installment loads when building card statements.
	LoadConcurrency int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Clock: time.Now,
		NewID: uuid.NewString,
		PublishRetry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
		},
		LoadConcurrency: 4,
	}
}

// New creates a ledger over storage with the default configuration.
func New(storage service.Storage) *Ledger {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates a ledger with custom configuration. Zero-valued fields fall back
// to their defaults.
func NewWithConfig(storage service.Storage, config Config) *Ledger {
	defaults := DefaultConfig()
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	if config.NewID == nil {
		config.NewID = defaults.NewID
	}
	if config.PublishRetry.MaxAttempts <= 0 {
		config.PublishRetry = defaults.PublishRetry
	}
	if config.LoadConcurrency <= 0 {
		config.LoadConcurrency = defaults.LoadConcurrency
	}

	return &Ledger{
		storage:   storage,
		publisher: config.Publisher,
		clock:     config.Clock,
		newID:     config.NewID,
		locks:     newKeyedMutex(),
		retry:     config.PublishRetry,
		loadLimit: config.LoadConcurrency,
	}
}

func (l *Ledger) now() time.Time {
	return l.clock().UTC()
}

func (l *Ledger) today() time.Time {
	return model.CivilDate(l.clock())
}

// storageError classifies a storage failure for the caller. Missing rows become a
// NotFoundError for entity; anything else is a PersistenceError.
func storageError(entity, action string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewNotFoundError(entity)
	}
	return common.NewPersistenceError(
		entity+"_"+action+"_failed",
		fmt.Sprintf("failed to %s %s", action, entity),
		err,
	)
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return common.NewValidationError("owner_required", "owner is required")
	}
	return nil
}

// publish delivers an event, retrying transient failures. Publication never fails the
// operation that produced the event; errors are logged.
func (l *Ledger) publish(ctx context.Context, eventType model.EventType, ownerID, entityID string, attrs map[string]string) {
	if l.publisher == nil {
		return
	}

	event := model.LedgerEvent{
		Type:       eventType,
		OwnerID:    ownerID,
		EntityID:   entityID,
		OccurredAt: l.now(),
		Attributes: attrs,
	}

	ctx = context.WithoutCancel(ctx)
	err := common.WithRetry(ctx, func() error {
		return l.publisher.Publish(ctx, event)
	}, l.retry)
	if err != nil {
		slog.Warn("Failed to publish ledger event",
			"type", eventType,
			"entity_id", entityID,
			"error", err)
	}
}
