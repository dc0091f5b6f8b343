package testutil

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/draft-together/server/internal/domain"
)

var fixtureCounter atomic.Int64

// nextFixtureID returns a process-unique suffix for fixture names.
func nextFixtureID() int64 {
	return fixtureCounter.Add(1)
}

// ChampionBuilder builds champion rows for tests.
type ChampionBuilder struct {
	riotID    string
	name      string
	positions []domain.Role
}

// NewChampion creates a builder with unique defaults.
func NewChampion() *ChampionBuilder {
	n := nextFixtureID()
	return &ChampionBuilder{
		riotID: fmt.Sprintf("TestChampion%d", n),
		name:   fmt.Sprintf("Test Champion %d", n),
	}
}

// WithRiotID sets the upstream string id.
func (b *ChampionBuilder) WithRiotID(riotID string) *ChampionBuilder {
	b.riotID = riotID
	return b
}

// WithName sets the display name.
func (b *ChampionBuilder) WithName(name string) *ChampionBuilder {
	b.name = name
	return b
}

// WithPositions sets the roles stored on the row.
func (b *ChampionBuilder) WithPositions(roles ...domain.Role) *ChampionBuilder {
	b.positions = roles
	return b
}

// Build inserts the champion and returns it with its database-assigned id.
func (b *ChampionBuilder) Build(t *testing.T, db *gorm.DB) *domain.Champion {
	t.Helper()

	champion := &domain.Champion{
		RiotID:                       b.riotID,
		Name:                         b.name,
		DefaultSkinImagePath:         fmt.Sprintf("img/%s_0.jpg", b.riotID),
		CenteredDefaultSkinImagePath: fmt.Sprintf("img/%s_centered_0.jpg", b.riotID),
	}
	if b.positions != nil {
		raw, err := json.Marshal(b.positions)
		require.NoError(t, err, "failed to marshal positions")
		champion.Positions = datatypes.JSON(raw)
	}

	err := db.Create(champion).Error
	require.NoError(t, err, "failed to create champion fixture")

	return champion
}

// SeedChampions inserts count champions and returns them in insertion order.
func SeedChampions(t *testing.T, db *gorm.DB, count int) []*domain.Champion {
	t.Helper()
	champions := make([]*domain.Champion, 0, count)
	for i := 0; i < count; i++ {
		champions = append(champions, NewChampion().Build(t, db))
	}
	return champions
}

// DraftBuilder builds persisted draft rows for tests.
type DraftBuilder struct {
	clientID uuid.UUID
	draft    domain.Draft
}

// NewDraft creates a builder for a fresh room id with an empty board.
func NewDraft() *DraftBuilder {
	return &DraftBuilder{clientID: uuid.New()}
}

// WithClientID sets the room id.
func (b *DraftBuilder) WithClientID(id uuid.UUID) *DraftBuilder {
	b.clientID = id
	return b
}

// WithSlot places a champion id into one board slot.
func (b *DraftBuilder) WithSlot(position domain.Position, championID int32) *DraftBuilder {
	b.draft.Apply(domain.ChampionUpdate{ChampionID: championID, Position: position})
	return b
}

// Build inserts the draft row and returns it.
func (b *DraftBuilder) Build(t *testing.T, db *gorm.DB) *domain.DraftRecord {
	t.Helper()

	record := &domain.DraftRecord{ClientID: b.clientID}
	record.SetSlots(b.draft)

	err := db.Create(record).Error
	require.NoError(t, err, "failed to create draft fixture")

	return record
}
