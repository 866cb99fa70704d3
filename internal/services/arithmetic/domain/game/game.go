// Package game numbers the rounds of a game, derives their seeds and keeps
// the running win count.
package game

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/round"
	"github.com/tidwall/gjson"
)

// Result is the outcome of one round. Solved mirrors the round while it is
// being played and becomes final once the next round begins.
type Result struct {
	Solved bool `json:"solved,omitempty"`
}

// Game is one player's sequence of rounds. Round numbers start at 1.
type Game struct {
	ID      string
	results []Result
	current *round.Round
}

// Seed derives the round seed from a game id and a 1-based round number.
func Seed(gameID string, roundNumber int) string {
	return gameID + strconv.Itoa(roundNumber)
}

// New creates a game with no rounds.
func New(id string) *Game {
	return &Game{ID: id}
}

// Restore creates a game from saved round results.
func Restore(id string, results []Result) *Game {
	return &Game{ID: id, results: slices.Clone(results)}
}

// Begin starts the next round and returns it.
func (g *Game) Begin() (*round.Round, error) {
	g.results = append(g.results, Result{})
	r, err := round.Generate(Seed(g.ID, len(g.results)))
	if err != nil {
		g.results = g.results[:len(g.results)-1]
		return nil, fmt.Errorf("generate round %d: %w", len(g.results)+1, err)
	}
	g.current = r
	g.Sync()
	return r, nil
}

// Resume attaches the round being played. A game without results gets one
// so the round has a number.
func (g *Game) Resume(r *round.Round) {
	if len(g.results) == 0 {
		g.results = append(g.results, Result{})
	}
	g.current = r
	g.Sync()
}

// Regenerate replaces the current round with a fresh draw of the same
// number, used when a saved round cannot be trusted.
func (g *Game) Regenerate() (*round.Round, error) {
	if len(g.results) == 0 {
		return g.Begin()
	}
	r, err := round.Generate(Seed(g.ID, len(g.results)))
	if err != nil {
		return nil, fmt.Errorf("generate round %d: %w", len(g.results), err)
	}
	g.current = r
	g.Sync()
	return r, nil
}

// Round returns the round being played, or nil before the first Begin.
func (g *Game) Round() *round.Round {
	return g.current
}

// Sync copies the current round's solved state into its result.
func (g *Game) Sync() {
	if g.current == nil || len(g.results) == 0 {
		return
	}
	g.results[len(g.results)-1].Solved = g.current.Solved()
}

// RoundNumber returns the number of the current round.
func (g *Game) RoundNumber() int {
	return len(g.results)
}

// Wins counts solved rounds, including the current one.
func (g *Game) Wins() int {
	wins := 0
	for _, r := range g.results {
		if r.Solved {
			wins++
		}
	}
	return wins
}

// Results returns a copy of every round result.
func (g *Game) Results() []Result {
	return slices.Clone(g.results)
}

// MarshalResults encodes the round results as a JSON array.
func (g *Game) MarshalResults() ([]byte, error) {
	results := g.results
	if results == nil {
		results = []Result{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	return data, nil
}

// ParseResults decodes saved round results. Every entry must be an object; a
// missing or non-true solved flag counts as unsolved.
func ParseResults(data []byte) ([]Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, apperrors.New(apperrors.CodeInvalidPersistedState, "invalid saved results: malformed json")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, apperrors.New(apperrors.CodeInvalidPersistedState, "invalid saved results: not an array")
	}
	items := root.Array()
	results := make([]Result, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			return nil, apperrors.New(apperrors.CodeInvalidPersistedState, "invalid saved results: entry is not an object")
		}
		results = append(results, Result{Solved: item.Get("solved").Type == gjson.True})
	}
	return results, nil
}
