package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// ErrInjected is returned by FaultyStorage for every injected failure.
var ErrInjected = errors.New("injected storage failure")

// Fault names a storage operation FaultyStorage can fail.
type Fault string

// Injectable faults.
const (
	FailInsertTransaction  Fault = "InsertTransaction"
	FailUpdateTransaction  Fault = "UpdateTransaction"
	FailDeleteTransaction  Fault = "DeleteTransaction"
	FailInsertInstallments Fault = "InsertInstallments"
	FailDeleteInstallments Fault = "DeleteInstallments"
	FailListTransactions   Fault = "ListTransactions"
	FailListCategories     Fault = "ListCategories"
)

// FaultyStorage wraps a storage and fails selected operations on demand.
type FaultyStorage struct {
	service.Storage
	faults map[Fault]int
	calls  map[Fault]int
	mu     sync.Mutex
}

// NewFaultyStorage wraps inner. No operation fails until Fail is called.
func NewFaultyStorage(inner service.Storage) *FaultyStorage {
	return &FaultyStorage{
		Storage: inner,
		faults:  make(map[Fault]int),
		calls:   make(map[Fault]int),
	}
}

// Fail makes the next times calls of op fail. A negative count fails every call.
func (f *FaultyStorage) Fail(op Fault, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = times
}

// Calls reports how many times op was invoked.
func (f *FaultyStorage) Calls(op Fault) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultyStorage) check(op Fault) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++
	remaining, ok := f.faults[op]
	if !ok || remaining == 0 {
		return nil
	}
	if remaining > 0 {
		f.faults[op] = remaining - 1
	}
	return ErrInjected
}

// InsertTransaction fails when FailInsertTransaction is armed.
func (f *FaultyStorage) InsertTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := f.check(FailInsertTransaction); err != nil {
		return err
	}
	return f.Storage.InsertTransaction(ctx, txn)
}

// UpdateTransaction fails when FailUpdateTransaction is armed.
func (f *FaultyStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := f.check(FailUpdateTransaction); err != nil {
		return err
	}
	return f.Storage.UpdateTransaction(ctx, txn)
}

// DeleteTransaction fails when FailDeleteTransaction is armed.
func (f *FaultyStorage) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := f.check(FailDeleteTransaction); err != nil {
		return err
	}
	return f.Storage.DeleteTransaction(ctx, ownerID, id)
}

// InsertInstallments fails when FailInsertInstallments is armed.
func (f *FaultyStorage) InsertInstallments(ctx context.Context, installments []model.Installment) error {
	if err := f.check(FailInsertInstallments); err != nil {
		return err
	}
	return f.Storage.InsertInstallments(ctx, installments)
}

// DeleteInstallments fails when FailDeleteInstallments is armed.
func (f *FaultyStorage) DeleteInstallments(ctx context.Context, transactionID string) error {
	if err := f.check(FailDeleteInstallments); err != nil {
		return err
	}
	return f.Storage.DeleteInstallments(ctx, transactionID)
}

// ListTransactions fails when FailListTransactions is armed.
func (f *FaultyStorage) ListTransactions(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	if err := f.check(FailListTransactions); err != nil {
		return nil, err
	}
	return f.Storage.ListTransactions(ctx, ownerID, filter)
}

// ListCategories fails when FailListCategories is armed.
func (f *FaultyStorage) ListCategories(ctx context.Context, ownerID string, filter model.CategoryFilter) ([]model.Category, error) {
	if err := f.check(FailListCategories); err != nil {
		return nil, err
	}
	return f.Storage.ListCategories(ctx, ownerID, filter)
}

// EventRecorder is an in-memory EventPublisher.
type EventRecorder struct {
	err    error
	events []model.LedgerEvent
	mu     sync.Mutex
}

// Publish records event, or returns the configured error.
func (r *EventRecorder) Publish(_ context.Context, event model.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

// FailWith makes every later Publish return err.
func (r *EventRecorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []model.LedgerEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.LedgerEvent(nil), r.events...)
}

// Types returns the types of the recorded events in order.
func (r *EventRecorder) Types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]model.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
