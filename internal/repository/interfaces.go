package repository

import (
	"context"

	"github.com/draft-together/server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChampionRepository interface {
	// List returns the full catalog snapshot.
	List(ctx context.Context) ([]*domain.Champion, error)
	// ExistsByRiotID reports whether a catalog entry with the upstream
	// textual id exists.
	ExistsByRiotID(ctx context.Context, riotID string) (bool, error)
	Insert(ctx context.Context, champion *domain.Champion) error
	// Update overwrites the mutable fields of the entry keyed by riot id.
	Update(ctx context.Context, champion *domain.Champion) error
	// SetRoles updates the role set of the entry whose name or riot id
	// matches key. Returns domain.ErrChampionNotFound when neither matches.
	SetRoles(ctx context.Context, key string, roles datatypes.JSON) error
}

type DraftRepository interface {
	Exists(ctx context.Context, clientID uuid.UUID) (bool, error)
	// Load returns the persisted draft row for a room id, or
	// domain.ErrDraftNotFound when absent.
	Load(ctx context.Context, clientID uuid.UUID) (*domain.DraftRecord, error)
	// Create inserts an empty row for the room id and returns the assigned
	// row id. A duplicate room id surfaces as the driver's duplicate-key
	// error.
	Create(ctx context.Context, clientID uuid.UUID) (int32, error)
	// Save overwrites all twenty slot columns of the row.
	Save(ctx context.Context, rowID int32, draft domain.Draft) error
}

type VersionRepository interface {
	// Current returns the stored catalog version, or domain.ErrVersionNotSet
	// when no sync has completed yet.
	Current(ctx context.Context) (string, error)
	Set(ctx context.Context, version string) error
}

type Repositories struct {
	Champion ChampionRepository
	Draft    DraftRepository
	Version  VersionRepository
}
