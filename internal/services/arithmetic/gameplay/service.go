// Package gameplay runs game sessions on top of the round engine and the
// game store. Every call loads the game, applies one action and saves it.
package gameplay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
	"github.com/louisbranch/arithmetic/internal/platform/id"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/game"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/round"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/arithmetic/internal/services/arithmetic/gameplay"

// Player is the set of game actions offered to every surface.
type Player interface {
	Start(ctx context.Context, gameID string) (View, error)
	State(ctx context.Context, gameID string) (View, error)
	NewRound(ctx context.Context, gameID string) (View, error)
	Apply(ctx context.Context, gameID string, move round.Move) (Result, error)
	Undo(ctx context.Context, gameID string) (Result, error)
	Reset(ctx context.Context, gameID string) (View, error)
}

// View is a snapshot of a game and its current round.
type View struct {
	GameID     string       `json:"gameId"`
	Round      int          `json:"round"`
	Wins       int          `json:"wins"`
	Target     int          `json:"target"`
	Operands   []int        `json:"operands"`
	Slots      []round.Slot `json:"slots"`
	Operations []string     `json:"operations"`
	Solved     bool         `json:"solved"`
	CanUndo    bool         `json:"canUndo"`
}

// Result is the outcome of an action that may be refused. Applied is false
// when the round was left unchanged.
type Result struct {
	View    View `json:"view"`
	Applied bool `json:"applied"`
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the game id generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock replaces the clock used for saved timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// Service implements Player over a GameStore.
type Service struct {
	store  storage.GameStore
	mu     sync.Mutex
	newID  func() (string, error)
	now    func() time.Time
	tracer trace.Tracer
}

var _ Player = (*Service)(nil)

// NewService creates a gameplay service.
func NewService(store storage.GameStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		newID:  id.NewID,
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// session is a loaded game plus the timestamp of its first save.
type session struct {
	game      *game.Game
	createdAt time.Time
}

// Start resumes or creates a game. An empty id resumes the most recently
// played game, or creates one when the store is empty. An unknown id creates
// a game under that id.
func (s *Service) Start(ctx context.Context, gameID string) (view View, err error) {
	ctx, span := s.startSpan(ctx, "Start", gameID)
	defer func() { endSpan(span, err) }()

	if err := s.check(); err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	gameID = strings.TrimSpace(gameID)
	var record storage.GameRecord
	if gameID == "" {
		record, err = s.store.LatestGame(ctx)
	} else {
		record, err = s.store.GetGame(ctx, gameID)
	}
	switch {
	case err == nil:
		sess, err := s.restore(record)
		if err != nil {
			return View{}, err
		}
		if err := s.save(ctx, sess); err != nil {
			return View{}, err
		}
		span.SetAttributes(attribute.String("game.id", sess.game.ID))
		return viewOf(sess.game), nil
	case errors.Is(err, storage.ErrNotFound):
	default:
		return View{}, fmt.Errorf("load game: %w", err)
	}

	if gameID == "" {
		gameID, err = s.newID()
		if err != nil {
			return View{}, err
		}
		span.SetAttributes(attribute.String("game.id", gameID))
	}
	g := game.New(gameID)
	if _, err := g.Begin(); err != nil {
		return View{}, err
	}
	sess := session{game: g, createdAt: s.now()}
	if err := s.save(ctx, sess); err != nil {
		return View{}, err
	}
	log.Printf("game %s created", gameID)
	return viewOf(g), nil
}

// State returns the current view of a game without changing it.
func (s *Service) State(ctx context.Context, gameID string) (view View, err error) {
	ctx, span := s.startSpan(ctx, "State", gameID)
	defer func() { endSpan(span, err) }()

	sess, err := s.lockAndLoad(ctx, gameID)
	if err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()
	return viewOf(sess.game), nil
}

// NewRound finishes the current round and draws the next one.
func (s *Service) NewRound(ctx context.Context, gameID string) (view View, err error) {
	ctx, span := s.startSpan(ctx, "NewRound", gameID)
	defer func() { endSpan(span, err) }()

	sess, err := s.lockAndLoad(ctx, gameID)
	if err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	if _, err := sess.game.Begin(); err != nil {
		return View{}, err
	}
	if err := s.save(ctx, sess); err != nil {
		return View{}, err
	}
	return viewOf(sess.game), nil
}

// Apply plays one move. An illegal move is reported with Applied unset and
// leaves the round as it was.
func (s *Service) Apply(ctx context.Context, gameID string, move round.Move) (result Result, err error) {
	ctx, span := s.startSpan(ctx, "Apply", gameID)
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("move.op", string(move.Op)), attribute.IntSlice("move.operands", move.Operands))

	sess, err := s.lockAndLoad(ctx, gameID)
	if err != nil {
		return Result{}, err
	}
	defer s.mu.Unlock()

	if !sess.game.Round().Apply(move) {
		return Result{View: viewOf(sess.game)}, nil
	}
	sess.game.Sync()
	if err := s.save(ctx, sess); err != nil {
		return Result{}, err
	}
	return Result{View: viewOf(sess.game), Applied: true}, nil
}

// Undo drops the latest move. Applied is false when there was none.
func (s *Service) Undo(ctx context.Context, gameID string) (result Result, err error) {
	ctx, span := s.startSpan(ctx, "Undo", gameID)
	defer func() { endSpan(span, err) }()

	sess, err := s.lockAndLoad(ctx, gameID)
	if err != nil {
		return Result{}, err
	}
	defer s.mu.Unlock()

	if !sess.game.Round().Undo() {
		return Result{View: viewOf(sess.game)}, nil
	}
	sess.game.Sync()
	if err := s.save(ctx, sess); err != nil {
		return Result{}, err
	}
	return Result{View: viewOf(sess.game), Applied: true}, nil
}

// Reset returns the current round to its initial draw.
func (s *Service) Reset(ctx context.Context, gameID string) (view View, err error) {
	ctx, span := s.startSpan(ctx, "Reset", gameID)
	defer func() { endSpan(span, err) }()

	sess, err := s.lockAndLoad(ctx, gameID)
	if err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	sess.game.Round().Reset()
	sess.game.Sync()
	if err := s.save(ctx, sess); err != nil {
		return View{}, err
	}
	return viewOf(sess.game), nil
}

func (s *Service) check() error {
	if s == nil || s.store == nil {
		return fmt.Errorf("game store is not configured")
	}
	return nil
}

// lockAndLoad takes the service lock and loads a known game. The lock is
// held only when the error is nil.
func (s *Service) lockAndLoad(ctx context.Context, gameID string) (session, error) {
	if err := s.check(); err != nil {
		return session{}, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return session{}, apperrors.New(apperrors.CodeGameIDRequired, "game id is required")
	}

	s.mu.Lock()
	record, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, storage.ErrNotFound) {
			return session{}, apperrors.WithMetadata(
				apperrors.CodeGameNotFound,
				fmt.Sprintf("game %s not found", gameID),
				map[string]string{"game_id": gameID},
			)
		}
		return session{}, fmt.Errorf("load game: %w", err)
	}
	sess, err := s.restore(record)
	if err != nil {
		s.mu.Unlock()
		return session{}, err
	}
	return sess, nil
}

// restore rebuilds a game from its record. Saved state that fails validation
// is logged and replaced by a fresh draw of the same round.
func (s *Service) restore(record storage.GameRecord) (session, error) {
	sess := session{createdAt: record.CreatedAt}

	results, err := game.ParseResults(record.Results)
	if err != nil {
		log.Printf("game %s: discarding saved results: %v", record.ID, err)
		results = nil
	}
	g := game.Restore(record.ID, results)
	sess.game = g

	saved, rec, err := round.Load(record.Round)
	if err == nil && g.RoundNumber() > 0 && rec.RoundNumber != g.RoundNumber() {
		err = apperrors.WithMetadata(
			apperrors.CodeInvalidPersistedState,
			fmt.Sprintf("invalid saved round: round %d does not match game round %d", rec.RoundNumber, g.RoundNumber()),
			map[string]string{"field": "roundNumber"},
		)
	}
	if err == nil && g.RoundNumber() == 0 {
		err = apperrors.WithMetadata(
			apperrors.CodeInvalidPersistedState,
			"invalid saved round: game has no round results",
			map[string]string{"field": "results"},
		)
	}
	if err != nil {
		log.Printf("game %s: discarding saved round: %v", record.ID, err)
		if _, err := g.Regenerate(); err != nil {
			return session{}, err
		}
		return sess, nil
	}
	g.Resume(saved)
	return sess, nil
}

func (s *Service) save(ctx context.Context, sess session) error {
	g := sess.game
	results, err := g.MarshalResults()
	if err != nil {
		return err
	}
	current, err := g.Round().Record(g.RoundNumber()).Marshal()
	if err != nil {
		return err
	}
	now := s.now()
	createdAt := sess.createdAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if err := s.store.PutGame(ctx, storage.GameRecord{
		ID:        g.ID,
		Results:   results,
		Round:     current,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (s *Service) startSpan(ctx context.Context, name, gameID string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	if s != nil && s.tracer != nil {
		tracer = s.tracer
	}
	ctx, span := tracer.Start(ctx, "gameplay."+name)
	if gameID = strings.TrimSpace(gameID); gameID != "" {
		span.SetAttributes(attribute.String("game.id", gameID))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func viewOf(g *game.Game) View {
	r := g.Round()
	operations := r.Operations()
	if operations == nil {
		operations = []string{}
	}
	return View{
		GameID:     g.ID,
		Round:      g.RoundNumber(),
		Wins:       g.Wins(),
		Target:     r.Target(),
		Operands:   r.Current(),
		Slots:      r.Slots(),
		Operations: operations,
		Solved:     r.Solved(),
		CanUndo:    r.CanUndo(),
	}
}
