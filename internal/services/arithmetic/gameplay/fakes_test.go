package gameplay

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/louisbranch/arithmetic/internal/services/arithmetic/storage"
)

type fakeGameStore struct {
	mu     sync.Mutex
	games  map[string]storage.GameRecord
	order  []string
	putErr error
	getErr error
	puts   int
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{games: make(map[string]storage.GameRecord)}
}

func (s *fakeGameStore) PutGame(_ context.Context, record storage.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	if existing, ok := s.games[record.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	s.games[record.ID] = record
	for i, id := range s.order {
		if id == record.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.order = append(s.order, record.ID)
	return nil
}

func (s *fakeGameStore) GetGame(_ context.Context, id string) (storage.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return storage.GameRecord{}, s.getErr
	}
	record, ok := s.games[strings.TrimSpace(id)]
	if !ok {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *fakeGameStore) LatestGame(context.Context) (storage.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return storage.GameRecord{}, s.getErr
	}
	if len(s.order) == 0 {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	return s.games[s.order[len(s.order)-1]], nil
}

var errBoom = errors.New("boom")
