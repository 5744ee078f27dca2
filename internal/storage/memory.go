package storage

import (
	"context"
	"sort"
	"sync"

	"biowire/internal/model"
)

type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]model.RunRecord
	series map[string][]model.TimePoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunRecord)
	s.series = make(map[string][]model.TimePoint)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC != out[j].CreatedAtUTC {
			return out[i].CreatedAtUTC < out[j].CreatedAtUTC
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) SaveSeries(_ context.Context, runID string, series []model.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.TimePoint, 0, len(series))
	for _, point := range series {
		copied = append(copied, model.TimePoint{Time: point.Time, State: point.State.Clone()})
	}
	s.series[runID] = copied
	return nil
}

func (s *MemoryStore) GetSeries(_ context.Context, runID string) ([]model.TimePoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TimePoint, 0, len(series))
	for _, point := range series {
		copied = append(copied, model.TimePoint{Time: point.Time, State: point.State.Clone()})
	}
	return copied, true, nil
}
