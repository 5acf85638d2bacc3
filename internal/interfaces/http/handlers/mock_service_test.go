package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Ingest(ctx context.Context, in *orgchart.IngestInput) (*orgchart.IngestResult, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*orgchart.IngestResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Reload(ctx context.Context) (*orgchart.IngestResult, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*orgchart.IngestResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) View(ctx context.Context, in *orgchart.ViewInput) (*orgchart.ViewResult, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*orgchart.ViewResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) TopEntities(ctx context.Context, in *orgchart.TopInput) (*orgchart.TopResult, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*orgchart.TopResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Regions(ctx context.Context, sessionID string) ([]string, error) {
	args := m.Called(ctx, sessionID)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Statistics(ctx context.Context, in *orgchart.StatsInput) (*orgchart.StatsResult, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*orgchart.StatsResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) ExportHierarchy(ctx context.Context, in *orgchart.ExportInput) (*orgchart.Artifact, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*orgchart.Artifact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) ExportTopEntities(ctx context.Context, in *orgchart.ExportInput) (*orgchart.Artifact, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*orgchart.Artifact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) DropSession(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockService) Ready(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

//Personal.AI order the ending
