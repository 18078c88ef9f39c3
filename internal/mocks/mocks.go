// Package mocks holds testify mocks shared by the service and handler tests
package mocks

import (
	"context"

	"github.com/damon-houk/pair-group-store/internal/domain/entity"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockPairGroupRepository mocks the PairGroupRepository interface
type MockPairGroupRepository struct {
	mock.Mock
}

func (m *MockPairGroupRepository) FetchPairGroups(ctx context.Context) ([]entity.PairGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PairGroup), args.Error(1)
}

func (m *MockPairGroupRepository) UpdatePairGroup(ctx context.Context, group *entity.PairGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockPairGroupRepository) CreatePairGroup(ctx context.Context, group *entity.PairGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockPairGroupRepository) DeletePairGroup(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}
