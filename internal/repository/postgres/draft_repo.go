package postgres

import (
	"context"
	"errors"

	"github.com/draft-together/server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// draftSlotColumns forces every slot column to be written on save, including
// the ones reset to NULL.
var draftSlotColumns = []string{
	"blue_ban_1", "blue_ban_2", "blue_ban_3", "blue_ban_4", "blue_ban_5",
	"red_ban_1", "red_ban_2", "red_ban_3", "red_ban_4", "red_ban_5",
	"blue_1", "blue_2", "blue_3", "blue_4", "blue_5",
	"red_1", "red_2", "red_3", "red_4", "red_5",
}

type draftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) *draftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Exists(ctx context.Context, clientID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.DraftRecord{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *draftRepository) Load(ctx context.Context, clientID uuid.UUID) (*domain.DraftRecord, error) {
	var record domain.DraftRecord
	err := r.db.WithContext(ctx).First(&record, "client_id = ?", clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *draftRepository) Create(ctx context.Context, clientID uuid.UUID) (int32, error) {
	record := domain.DraftRecord{ClientID: clientID}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (r *draftRepository) Save(ctx context.Context, rowID int32, draft domain.Draft) error {
	record := domain.DraftRecord{ID: rowID}
	record.SetSlots(draft)
	return r.db.WithContext(ctx).
		Model(&record).
		Select(draftSlotColumns).
		Updates(&record).Error
}
