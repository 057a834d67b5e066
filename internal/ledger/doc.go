// Package ledger holds the pure decision and computation rules of the ledger: splitting
// amounts into installments, competency periods, installment schedules, consistency checks
// and monthly aggregation. Nothing in this package performs I/O; callers hand it data that
// was already fetched from storage.
package ledger
