package postgres

import (
	"context"

	"github.com/draft-together/server/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type championRepository struct {
	db *gorm.DB
}

func NewChampionRepository(db *gorm.DB) *championRepository {
	return &championRepository{db: db}
}

func (r *championRepository) List(ctx context.Context) ([]*domain.Champion, error) {
	var champions []*domain.Champion
	err := r.db.WithContext(ctx).Order("name ASC").Find(&champions).Error
	if err != nil {
		return nil, err
	}
	return champions, nil
}

func (r *championRepository) ExistsByRiotID(ctx context.Context, riotID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Champion{}).
		Where("riot_id = ?", riotID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *championRepository) Insert(ctx context.Context, champion *domain.Champion) error {
	return r.db.WithContext(ctx).Create(champion).Error
}

func (r *championRepository) Update(ctx context.Context, champion *domain.Champion) error {
	return r.db.WithContext(ctx).
		Model(&domain.Champion{}).
		Where("riot_id = ?", champion.RiotID).
		Updates(map[string]interface{}{
			"name":                             champion.Name,
			"default_skin_image_path":          champion.DefaultSkinImagePath,
			"centered_default_skin_image_path": champion.CenteredDefaultSkinImagePath,
		}).Error
}

func (r *championRepository) SetRoles(ctx context.Context, key string, roles datatypes.JSON) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Champion{}).
		Where("name = ? OR riot_id = ?", key, key).
		Update("roles_json", roles)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrChampionNotFound
	}
	return nil
}
