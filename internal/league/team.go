package league

import (
	"time"

	"github.com/google/uuid"
)

type SetLevel string

const (
	Set1 SetLevel = "Set-1"
	Set2 SetLevel = "Set-2"
	Set3 SetLevel = "Set-3"
	Set4 SetLevel = "Set-4"
	Set5 SetLevel = "Set-5"
)

func (l SetLevel) Valid() bool {
	switch l {
	case Set1, Set2, Set3, Set4, Set5:
		return true
	}
	return false
}

// Team is immutable once created. Position preserves insertion order and is
// the final standings tie-breaker.
type Team struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Position  int       `db:"position" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Player struct {
	ID       uuid.UUID `db:"id" json:"id"`
	TeamID   uuid.UUID `db:"team_id" json:"team_id"`
	TeamName string    `db:"team_name" json:"team"`
	Name     string    `db:"name" json:"name"`
	SetLevel SetLevel  `db:"set_level" json:"set_level"`
}

type Referee struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
