package fleet

import (
	"context"
	"errors"

	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/repository"
	"go.uber.org/zap"
)

type FleetUseCase interface {
	List(ctx context.Context) ([]domain.Asset, error)
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
}

type AssetCache interface {
	GetAssets(ctx context.Context) ([]domain.Asset, error)
	SetAssets(ctx context.Context, assets []domain.Asset) error
}

type FleetService struct {
	repo   repository.AssetRepository
	cache  AssetCache
	logger *zap.Logger
}

type FleetServiceOption func(*FleetService)

func WithLogger(logger *zap.Logger) FleetServiceOption {
	return func(s *FleetService) {
		s.logger = logger
	}
}

// cache may be nil.
func NewFleetService(repo repository.AssetRepository, cache AssetCache, opts ...FleetServiceOption) *FleetService {
	s := &FleetService{repo: repo, cache: cache, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FleetService) List(ctx context.Context) ([]domain.Asset, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAssets(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.Warn("asset cache read failed", zap.Error(err))
		}
	}

	assets, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("asset store", err)
	}
	if s.cache != nil {
		if err := s.cache.SetAssets(ctx, assets); err != nil {
			s.logger.Warn("asset cache write failed", zap.Error(err))
		}
	}
	return assets, nil
}

func (s *FleetService) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("asset", id)
		}
		return nil, apperrors.Unavailable("asset store", err)
	}
	return asset, nil
}

var _ FleetUseCase = (*FleetService)(nil)
