// Package repository persists candles. Two implementations share one
// interface: an in-memory store for tests and ephemeral runs, and a
// badger-backed store for durable deployments.
package repository

import (
	"context"
	"time"

	"github.com/lumenmap/candles/internal/domain/model"
)

// Store is the candle persistence contract. Create assigns the ID and
// the server-side creation instant; candles are immutable afterwards.
type Store interface {
	// Create validates nothing; callers validate first. Returns the
	// stored candle with ID and CreatedAt filled in.
	Create(ctx context.Context, candle model.Candle) (model.Candle, error)

	// Get returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (model.Candle, error)

	// List returns up to limit candles in insertion order, starting
	// after the candle with afterID (empty means from the start).
	// A short page signals the end of the collection.
	List(ctx context.Context, afterID string, limit int) ([]model.Candle, error)

	// Delete removes a candle if ownerID matches; ErrNotOwner otherwise.
	Delete(ctx context.Context, id, ownerID string) error

	// Snapshot returns every candle in insertion order, for the
	// aggregation views.
	Snapshot(ctx context.Context) ([]model.Candle, error)

	// Count returns the number of stored candles.
	Count(ctx context.Context) (int, error)

	// Close releases underlying resources.
	Close() error
}

// clock abstracts time for deterministic tests.
type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
