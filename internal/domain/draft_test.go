package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draft-together/server/internal/domain"
)

func TestDraftApply_PlacesChampionInEachSection(t *testing.T) {
	var draft domain.Draft

	draft.Apply(domain.ChampionUpdate{ChampionID: 266, Position: domain.PositionBlue1})
	draft.Apply(domain.ChampionUpdate{ChampionID: 103, Position: domain.PositionRed3})
	draft.Apply(domain.ChampionUpdate{ChampionID: 21, Position: domain.PositionBlueBan5})
	draft.Apply(domain.ChampionUpdate{ChampionID: 84, Position: domain.PositionRedBan2})

	require.NotNil(t, draft.BlueChampions[0])
	assert.Equal(t, int32(266), *draft.BlueChampions[0])
	require.NotNil(t, draft.RedChampions[2])
	assert.Equal(t, int32(103), *draft.RedChampions[2])
	require.NotNil(t, draft.BlueBans[4])
	assert.Equal(t, int32(21), *draft.BlueBans[4])
	require.NotNil(t, draft.RedBans[1])
	assert.Equal(t, int32(84), *draft.RedBans[1])

	// Every other slot stays empty.
	filled := map[domain.Position]bool{
		domain.PositionBlue1:    true,
		domain.PositionRed3:     true,
		domain.PositionBlueBan5: true,
		domain.PositionRedBan2:  true,
	}
	for _, pos := range domain.AllPositions {
		if !filled[pos] {
			assert.Nilf(t, draft.Slot(pos), "slot %s should be empty", pos)
		}
	}
}

func TestDraftApply_LaterEditOverwritesSlot(t *testing.T) {
	var draft domain.Draft

	draft.Apply(domain.ChampionUpdate{ChampionID: 266, Position: domain.PositionBlue1})
	draft.Apply(domain.ChampionUpdate{ChampionID: 103, Position: domain.PositionBlue1})

	require.NotNil(t, draft.BlueChampions[0])
	assert.Equal(t, int32(103), *draft.BlueChampions[0])
}

func TestDraftApply_SameEditTwiceIsNoOp(t *testing.T) {
	var draft domain.Draft
	update := domain.ChampionUpdate{ChampionID: 266, Position: domain.PositionRedBan1}

	draft.Apply(update)
	first := draft
	draft.Apply(update)

	assert.Equal(t, first, draft)
}

func TestDraftSlot_CoversAllPositions(t *testing.T) {
	var draft domain.Draft
	for i, pos := range domain.AllPositions {
		draft.Apply(domain.ChampionUpdate{ChampionID: int32(i + 1), Position: pos})
	}
	for i, pos := range domain.AllPositions {
		got := draft.Slot(pos)
		require.NotNilf(t, got, "slot %s", pos)
		assert.Equalf(t, int32(i+1), *got, "slot %s", pos)
	}
}

func TestDraftJSON_EmptyBoardHasNullSlots(t *testing.T) {
	var draft domain.Draft

	data, err := json.Marshal(draft)
	require.NoError(t, err)

	var decoded map[string][]*int32
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"blue_champions", "red_champions", "blue_bans", "red_bans"} {
		require.Contains(t, decoded, key)
		assert.Len(t, decoded[key], domain.TeamSize)
		for _, slot := range decoded[key] {
			assert.Nil(t, slot)
		}
	}
}

func TestDraftJSON_RoundTrip(t *testing.T) {
	var draft domain.Draft
	draft.Apply(domain.ChampionUpdate{ChampionID: 266, Position: domain.PositionBlue1})
	draft.Apply(domain.ChampionUpdate{ChampionID: 21, Position: domain.PositionRedBan4})

	data, err := json.Marshal(draft)
	require.NoError(t, err)

	var decoded domain.Draft
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, draft, decoded)
}

func TestPositionIsValid(t *testing.T) {
	for _, pos := range domain.AllPositions {
		assert.Truef(t, pos.IsValid(), "position %s", pos)
	}

	for _, bad := range []domain.Position{"", "Blue6", "blue1", "Mid", "RedBan0"} {
		assert.Falsef(t, bad.IsValid(), "position %q", bad)
	}
}

func TestPositionUnmarshal_RejectsUnknownTag(t *testing.T) {
	var update domain.ChampionUpdate
	err := json.Unmarshal([]byte(`{"champion_id": 266, "position": "Blue6"}`), &update)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown board position")
}

func TestChampionUpdateUnmarshal(t *testing.T) {
	var update domain.ChampionUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"champion_id": 266, "position": "BlueBan1"}`), &update))
	assert.Equal(t, int32(266), update.ChampionID)
	assert.Equal(t, domain.PositionBlueBan1, update.Position)
}

func TestDraftRecord_SlotsRoundTrip(t *testing.T) {
	var draft domain.Draft
	for i, pos := range domain.AllPositions {
		draft.Apply(domain.ChampionUpdate{ChampionID: int32(100 + i), Position: pos})
	}

	var record domain.DraftRecord
	record.SetSlots(draft)
	assert.Equal(t, draft, record.Snapshot())
}
