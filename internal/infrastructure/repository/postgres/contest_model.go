package postgres

import (
	"time"

	"github.com/pickemhq/pickem-backend/internal/domain/contest"
)

type contestTableModel struct {
	ID              int64      `db:"id"`
	ExternalID      string     `db:"external_id"`
	HomeTeamID      string     `db:"home_team_id"`
	HomeTeamName    string     `db:"home_team_name"`
	HomeTeamAbbr    string     `db:"home_team_abbr"`
	AwayTeamID      string     `db:"away_team_id"`
	AwayTeamName    string     `db:"away_team_name"`
	AwayTeamAbbr    string     `db:"away_team_abbr"`
	ScheduledAt     time.Time  `db:"scheduled_at"`
	Status          string     `db:"status"`
	HomeScore       int        `db:"home_score"`
	AwayScore       int        `db:"away_score"`
	Period          int        `db:"period"`
	DisplayClock    string     `db:"display_clock"`
	StatusDetail    string     `db:"status_detail"`
	Week            int        `db:"week"`
	Season          int        `db:"season"`
	SeasonType      int        `db:"season_type"`
	LastRefreshedAt time.Time  `db:"last_refreshed_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

func (m contestTableModel) toDomain() contest.Contest {
	return contest.Contest{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		HomeParticipant: contest.Participant{
			ID:           m.HomeTeamID,
			Name:         m.HomeTeamName,
			Abbreviation: m.HomeTeamAbbr,
		},
		AwayParticipant: contest.Participant{
			ID:           m.AwayTeamID,
			Name:         m.AwayTeamName,
			Abbreviation: m.AwayTeamAbbr,
		},
		ScheduledAt:     m.ScheduledAt,
		Status:          contest.Status(m.Status),
		HomeScore:       m.HomeScore,
		AwayScore:       m.AwayScore,
		Period:          m.Period,
		DisplayClock:    m.DisplayClock,
		StatusDetail:    m.StatusDetail,
		Week:            m.Week,
		Season:          m.Season,
		SeasonType:      m.SeasonType,
		LastRefreshedAt: m.LastRefreshedAt,
	}
}
