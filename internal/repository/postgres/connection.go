package postgres

import (
	"github.com/draft-together/server/internal/domain"
	"github.com/draft-together/server/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(5)

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.Champion{},
		&domain.CatalogVersion{},
		&domain.DraftRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Champion: NewChampionRepository(db),
		Draft:    NewDraftRepository(db),
		Version:  NewVersionRepository(db),
	}
}
