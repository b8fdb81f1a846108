package db

import (
	"context"

	"github.com/TFMV/codemetrics/types"
)

type MockDB struct {
	InitializeFunc func(ctx context.Context) error
	StoreRunFunc   func(ctx context.Context, run types.RunReport) error
	CloseFunc      func() error
}

func NewMockDB() *MockDB {
	return &MockDB{
		InitializeFunc: func(ctx context.Context) error {
			return nil
		},
	}
}

func (m *MockDB) Initialize(ctx context.Context) error {
	return m.InitializeFunc(ctx)
}

func (m *MockDB) StoreRun(ctx context.Context, run types.RunReport) error {
	if m.StoreRunFunc != nil {
		return m.StoreRunFunc(ctx, run)
	}
	return nil
}

func (m *MockDB) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
