package postgres

import (
	"context"
	"errors"

	"github.com/draft-together/server/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type versionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *versionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) Current(ctx context.Context) (string, error) {
	var row domain.CatalogVersion
	err := r.db.WithContext(ctx).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrVersionNotSet
	}
	if err != nil {
		return "", err
	}
	return row.Version, nil
}

func (r *versionRepository) Set(ctx context.Context, version string) error {
	row := domain.CatalogVersion{ID: 1, Version: version}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}
