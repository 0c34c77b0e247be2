package postgres

import (
	"time"

	"github.com/pickemhq/pickem-backend/internal/domain/pick"
)

type pickTableModel struct {
	ID                  int64      `db:"id"`
	UserID              string     `db:"user_id"`
	GroupID             int64      `db:"group_id"`
	ContestID           int64      `db:"contest_id"`
	PickedParticipantID *string    `db:"picked_participant_id"`
	Confidence          *int       `db:"confidence"`
	Week                int        `db:"week"`
	Season              int        `db:"season"`
	SeasonType          int        `db:"season_type"`
	Won                 *bool      `db:"won"`
	Points              *int       `db:"points"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at"`
}

func (m pickTableModel) toDomain() pick.Pick {
	return pick.Pick{
		ID:                  m.ID,
		UserID:              m.UserID,
		GroupID:             m.GroupID,
		ContestID:           m.ContestID,
		PickedParticipantID: m.PickedParticipantID,
		Confidence:          m.Confidence,
		Week:                m.Week,
		Season:              m.Season,
		SeasonType:          m.SeasonType,
		Won:                 m.Won,
		Points:              m.Points,
		UpdatedAt:           m.UpdatedAt,
	}
}
