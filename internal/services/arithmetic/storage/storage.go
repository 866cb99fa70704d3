// Package storage defines persistence contracts for arithmetic games.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
)

// ErrNotFound indicates a requested game record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// GameRecord stores one game's round results and its current round.
//
// Results and Round hold the JSON forms produced by the game and round
// packages. The store does not interpret them, so a corrupt payload is only
// detected when the game is resumed.
type GameRecord struct {
	ID        string
	Results   []byte
	Round     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GameStore persists games.
type GameStore interface {
	// PutGame inserts or replaces a game. CreatedAt is kept from the first write.
	PutGame(ctx context.Context, record GameRecord) error
	// GetGame returns one game or ErrNotFound.
	GetGame(ctx context.Context, id string) (GameRecord, error)
	// LatestGame returns the most recently updated game or ErrNotFound.
	LatestGame(ctx context.Context) (GameRecord, error)
}

// Store is a GameStore that owns a closable resource.
type Store interface {
	GameStore
	Close() error
}
