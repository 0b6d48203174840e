package repository

import (
	"context"

	"github.com/Domenick1991/charterbook/internal/domain"
)

type AssetRepository interface {
	List(ctx context.Context) ([]domain.Asset, error)
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
}

type PGAssetRepository struct {
	db DB
}

func NewAssetRepository(db DB) AssetRepository {
	return &PGAssetRepository{db: db}
}

const assetColumns = `id, name, category, hourly_rate, daily_rate, max_capacity, is_active, created_at, updated_at`

func (r *PGAssetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	rows, err := r.db.Query(ctx, `SELECT `+assetColumns+` FROM assets WHERE is_active ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]domain.Asset, 0)
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &a.HourlyRate, &a.DailyRate, &a.MaxCapacity, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *PGAssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	row := r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id=$1`, id)
	var a domain.Asset
	if err := row.Scan(&a.ID, &a.Name, &a.Category, &a.HourlyRate, &a.DailyRate, &a.MaxCapacity, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

var _ AssetRepository = (*PGAssetRepository)(nil)
