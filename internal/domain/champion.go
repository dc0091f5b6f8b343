package domain

import "gorm.io/datatypes"

// Champion is one catalog entry. Created and mutated only by the ingester;
// never deleted. The numeric ID is assigned by the database and is the id
// peers reference in edits.
type Champion struct {
	ID                           int32          `json:"id" gorm:"primaryKey"`
	RiotID                       string         `json:"riot_id" gorm:"uniqueIndex;not null"`
	Name                         string         `json:"name" gorm:"not null"`
	DefaultSkinImagePath         string         `json:"default_skin_image_path"`
	CenteredDefaultSkinImagePath string         `json:"centered_default_skin_image_path"`
	Positions                    datatypes.JSON `json:"positions" gorm:"column:roles_json;type:jsonb"`
}

func (Champion) TableName() string {
	return "champion"
}

// CatalogVersion is the single-row scalar recording the upstream game version
// the catalog was last synced to.
type CatalogVersion struct {
	ID      int32  `gorm:"primaryKey"`
	Version string `gorm:"not null"`
}

func (CatalogVersion) TableName() string {
	return "version"
}
