package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TeamSize is the number of picks and the number of bans each side holds.
const TeamSize = 5

// Position identifies one of the twenty slots on the draft board.
type Position string

const (
	PositionBlue1    Position = "Blue1"
	PositionBlue2    Position = "Blue2"
	PositionBlue3    Position = "Blue3"
	PositionBlue4    Position = "Blue4"
	PositionBlue5    Position = "Blue5"
	PositionRed1     Position = "Red1"
	PositionRed2     Position = "Red2"
	PositionRed3     Position = "Red3"
	PositionRed4     Position = "Red4"
	PositionRed5     Position = "Red5"
	PositionBlueBan1 Position = "BlueBan1"
	PositionBlueBan2 Position = "BlueBan2"
	PositionBlueBan3 Position = "BlueBan3"
	PositionBlueBan4 Position = "BlueBan4"
	PositionBlueBan5 Position = "BlueBan5"
	PositionRedBan1  Position = "RedBan1"
	PositionRedBan2  Position = "RedBan2"
	PositionRedBan3  Position = "RedBan3"
	PositionRedBan4  Position = "RedBan4"
	PositionRedBan5  Position = "RedBan5"
)

// AllPositions contains all valid board positions in board order.
var AllPositions = []Position{
	PositionBlue1, PositionBlue2, PositionBlue3, PositionBlue4, PositionBlue5,
	PositionRed1, PositionRed2, PositionRed3, PositionRed4, PositionRed5,
	PositionBlueBan1, PositionBlueBan2, PositionBlueBan3, PositionBlueBan4, PositionBlueBan5,
	PositionRedBan1, PositionRedBan2, PositionRedBan3, PositionRedBan4, PositionRedBan5,
}

// IsValid checks if a position is one of the twenty board slots.
func (p Position) IsValid() bool {
	switch p {
	case PositionBlue1, PositionBlue2, PositionBlue3, PositionBlue4, PositionBlue5,
		PositionRed1, PositionRed2, PositionRed3, PositionRed4, PositionRed5,
		PositionBlueBan1, PositionBlueBan2, PositionBlueBan3, PositionBlueBan4, PositionBlueBan5,
		PositionRedBan1, PositionRedBan2, PositionRedBan3, PositionRedBan4, PositionRedBan5:
		return true
	}
	return false
}

// String returns the string representation of the position.
func (p Position) String() string {
	return string(p)
}

// UnmarshalJSON rejects strings outside the closed position set, so a stray
// tag fails at parse time instead of silently naming no slot.
func (p *Position) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !Position(s).IsValid() {
		return fmt.Errorf("unknown board position %q", s)
	}
	*p = Position(s)
	return nil
}

// index is the zero-based slot offset encoded in the tag's trailing digit.
func (p Position) index() int {
	return int(p[len(p)-1] - '1')
}

// ChampionUpdate is a single peer edit: place a champion into a board slot.
type ChampionUpdate struct {
	ChampionID int32    `json:"champion_id"`
	Position   Position `json:"position"`
}

// Draft is the shared board of one room: five picks and five bans per side.
// The zero value is the empty board. Slots hold champion ids; a nil slot is
// empty. Slot pointers are never mutated in place, so copying a Draft yields
// an independent snapshot.
type Draft struct {
	BlueChampions [TeamSize]*int32 `json:"blue_champions"`
	RedChampions  [TeamSize]*int32 `json:"red_champions"`
	BlueBans      [TeamSize]*int32 `json:"blue_bans"`
	RedBans       [TeamSize]*int32 `json:"red_bans"`
}

// Apply writes the update's champion id into the slot named by its position.
// Applying the same update twice is a no-op; a later update to the same slot
// overwrites unconditionally. Other slots are untouched.
func (d *Draft) Apply(update ChampionUpdate) {
	id := update.ChampionID
	switch p := update.Position; p {
	case PositionBlue1, PositionBlue2, PositionBlue3, PositionBlue4, PositionBlue5:
		d.BlueChampions[p.index()] = &id
	case PositionRed1, PositionRed2, PositionRed3, PositionRed4, PositionRed5:
		d.RedChampions[p.index()] = &id
	case PositionBlueBan1, PositionBlueBan2, PositionBlueBan3, PositionBlueBan4, PositionBlueBan5:
		d.BlueBans[p.index()] = &id
	case PositionRedBan1, PositionRedBan2, PositionRedBan3, PositionRedBan4, PositionRedBan5:
		d.RedBans[p.index()] = &id
	}
}

// Slot returns the champion id currently held at p, or nil when empty.
func (d *Draft) Slot(p Position) *int32 {
	switch p {
	case PositionBlue1, PositionBlue2, PositionBlue3, PositionBlue4, PositionBlue5:
		return d.BlueChampions[p.index()]
	case PositionRed1, PositionRed2, PositionRed3, PositionRed4, PositionRed5:
		return d.RedChampions[p.index()]
	case PositionBlueBan1, PositionBlueBan2, PositionBlueBan3, PositionBlueBan4, PositionBlueBan5:
		return d.BlueBans[p.index()]
	case PositionRedBan1, PositionRedBan2, PositionRedBan3, PositionRedBan4, PositionRedBan5:
		return d.RedBans[p.index()]
	}
	return nil
}

// DraftRecord is the persisted form of a room's draft, one row per room id.
// The slot columns mirror the board: all twenty are nullable champion ids.
type DraftRecord struct {
	ID       int32     `gorm:"primaryKey"`
	ClientID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	BlueBan1 *int32    `gorm:"column:blue_ban_1"`
	BlueBan2 *int32    `gorm:"column:blue_ban_2"`
	BlueBan3 *int32    `gorm:"column:blue_ban_3"`
	BlueBan4 *int32    `gorm:"column:blue_ban_4"`
	BlueBan5 *int32    `gorm:"column:blue_ban_5"`
	RedBan1  *int32    `gorm:"column:red_ban_1"`
	RedBan2  *int32    `gorm:"column:red_ban_2"`
	RedBan3  *int32    `gorm:"column:red_ban_3"`
	RedBan4  *int32    `gorm:"column:red_ban_4"`
	RedBan5  *int32    `gorm:"column:red_ban_5"`
	Blue1    *int32    `gorm:"column:blue_1"`
	Blue2    *int32    `gorm:"column:blue_2"`
	Blue3    *int32    `gorm:"column:blue_3"`
	Blue4    *int32    `gorm:"column:blue_4"`
	Blue5    *int32    `gorm:"column:blue_5"`
	Red1     *int32    `gorm:"column:red_1"`
	Red2     *int32    `gorm:"column:red_2"`
	Red3     *int32    `gorm:"column:red_3"`
	Red4     *int32    `gorm:"column:red_4"`
	Red5     *int32    `gorm:"column:red_5"`
}

func (DraftRecord) TableName() string {
	return "draft"
}

// Snapshot rebuilds the in-memory Draft from the row's slot columns.
func (r *DraftRecord) Snapshot() Draft {
	return Draft{
		BlueChampions: [TeamSize]*int32{r.Blue1, r.Blue2, r.Blue3, r.Blue4, r.Blue5},
		RedChampions:  [TeamSize]*int32{r.Red1, r.Red2, r.Red3, r.Red4, r.Red5},
		BlueBans:      [TeamSize]*int32{r.BlueBan1, r.BlueBan2, r.BlueBan3, r.BlueBan4, r.BlueBan5},
		RedBans:       [TeamSize]*int32{r.RedBan1, r.RedBan2, r.RedBan3, r.RedBan4, r.RedBan5},
	}
}

// SetSlots overwrites the row's slot columns from d.
func (r *DraftRecord) SetSlots(d Draft) {
	r.Blue1, r.Blue2, r.Blue3, r.Blue4, r.Blue5 =
		d.BlueChampions[0], d.BlueChampions[1], d.BlueChampions[2], d.BlueChampions[3], d.BlueChampions[4]
	r.Red1, r.Red2, r.Red3, r.Red4, r.Red5 =
		d.RedChampions[0], d.RedChampions[1], d.RedChampions[2], d.RedChampions[3], d.RedChampions[4]
	r.BlueBan1, r.BlueBan2, r.BlueBan3, r.BlueBan4, r.BlueBan5 =
		d.BlueBans[0], d.BlueBans[1], d.BlueBans[2], d.BlueBans[3], d.BlueBans[4]
	r.RedBan1, r.RedBan2, r.RedBan3, r.RedBan4, r.RedBan5 =
		d.RedBans[0], d.RedBans[1], d.RedBans[2], d.RedBans[3], d.RedBans[4]
}
