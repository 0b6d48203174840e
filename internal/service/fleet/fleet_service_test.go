package fleet

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Asset), args.Error(1)
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetAssets(ctx context.Context) ([]domain.Asset, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Asset), args.Error(1)
}

func (m *MockCache) SetAssets(ctx context.Context, assets []domain.Asset) error {
	args := m.Called(ctx, assets)
	return args.Error(0)
}

var testAssets = []domain.Asset{
	{ID: "heli-1", Name: "Bell 407", Category: domain.CategoryHelicopter, HourlyRate: 4000, MaxCapacity: 6, IsActive: true},
	{ID: "yacht-1", Name: "Azimut 72", Category: domain.CategoryYacht, HourlyRate: 1000, MaxCapacity: 30, IsActive: true},
}

func TestFleetService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockAssetRepository{}
	mockCache := &MockCache{}
	service := NewFleetService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetAssets", ctx).Return(([]domain.Asset)(nil), nil).Once()
	mockRepo.On("List", ctx).Return(testAssets, nil).Once()
	mockCache.On("SetAssets", ctx, testAssets).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, testAssets, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFleetService_List_CacheHit(t *testing.T) {
	mockRepo := &MockAssetRepository{}
	mockCache := &MockCache{}
	service := NewFleetService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetAssets", ctx).Return(testAssets, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, testAssets, result)
	mockRepo.AssertNotCalled(t, "List", ctx)
	mockCache.AssertExpectations(t)
}

func TestFleetService_List_CacheErrorFallsThrough(t *testing.T) {
	mockRepo := &MockAssetRepository{}
	mockCache := &MockCache{}
	service := NewFleetService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetAssets", ctx).Return(([]domain.Asset)(nil), errors.New("redis down")).Once()
	mockRepo.On("List", ctx).Return(testAssets, nil).Once()
	mockCache.On("SetAssets", ctx, testAssets).Return(errors.New("redis down")).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	mockRepo.AssertExpectations(t)
}

func TestFleetService_List_NilCache(t *testing.T) {
	mockRepo := &MockAssetRepository{}
	service := NewFleetService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return(nil, errors.New("connection refused")).Once()

	result, err := service.List(ctx)

	assert.Nil(t, result)
	assert.Equal(t, apperrors.CodeCollaboratorUnavailable, apperrors.CodeOf(err))
}

func TestFleetService_GetAsset(t *testing.T) {
	testCases := []struct {
		name         string
		repoAsset    *domain.Asset
		repoErr      error
		expectedCode string
	}{
		{name: "Found", repoAsset: &testAssets[0]},
		{name: "Not found", repoErr: repository.ErrNotFound, expectedCode: apperrors.CodeNotFound},
		{name: "Store down", repoErr: errors.New("timeout"), expectedCode: apperrors.CodeCollaboratorUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &MockAssetRepository{}
			service := NewFleetService(mockRepo, nil)
			ctx := context.Background()

			if tc.repoAsset != nil {
				mockRepo.On("GetByID", ctx, "heli-1").Return(tc.repoAsset, nil).Once()
			} else {
				mockRepo.On("GetByID", ctx, "heli-1").Return(nil, tc.repoErr).Once()
			}

			asset, err := service.GetAsset(ctx, "heli-1")

			if tc.expectedCode == "" {
				assert.NoError(t, err)
				assert.Equal(t, tc.repoAsset, asset)
			} else {
				assert.Nil(t, asset)
				assert.Equal(t, tc.expectedCode, apperrors.CodeOf(err))
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
