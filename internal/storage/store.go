package storage

import (
	"context"

	"biowire/internal/model"
)

// Store persists simulation runs and their recorded state series.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveSeries(ctx context.Context, runID string, series []model.TimePoint) error
	GetSeries(ctx context.Context, runID string) ([]model.TimePoint, bool, error)
}

// Resetter is an optional store capability that drops all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}
