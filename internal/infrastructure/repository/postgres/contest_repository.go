package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pickemhq/pickem-backend/internal/domain/contest"
	qb "github.com/pickemhq/pickem-backend/internal/platform/querybuilder"
)

type ContestRepository struct {
	db *sqlx.DB
}

func NewContestRepository(db *sqlx.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) GetByExternalID(ctx context.Context, externalID string) (contest.Contest, bool, error) {
	query, args, err := qb.Select("*").From("contests").
		Where(
			qb.Eq("external_id", externalID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return contest.Contest{}, false, fmt.Errorf("build select contest query: %w", err)
	}

	var row contestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contest.Contest{}, false, nil
		}
		return contest.Contest{}, false, fmt.Errorf("select contest by external id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *ContestRepository) ListByWeek(ctx context.Context, key contest.WeekKey) ([]contest.Contest, error) {
	query, args, err := qb.Select("*").From("contests").
		Where(
			qb.Eq("season", key.Season),
			qb.Eq("season_type", key.SeasonType),
			qb.Eq("week", key.Week),
			qb.IsNull("deleted_at"),
		).
		OrderBy("scheduled_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select contests by week query: %w", err)
	}

	var rows []contestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select contests by week: %w", err)
	}

	out := make([]contest.Contest, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ContestRepository) ListWeeks(ctx context.Context, season, seasonType int) ([]int, error) {
	query, args, err := qb.Select("DISTINCT week").From("contests").
		Where(
			qb.Eq("season", season),
			qb.Eq("season_type", seasonType),
			qb.IsNull("deleted_at"),
		).
		OrderBy("week").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select weeks query: %w", err)
	}

	var weeks []int
	if err := r.db.SelectContext(ctx, &weeks, query, args...); err != nil {
		return nil, fmt.Errorf("select weeks: %w", err)
	}
	return weeks, nil
}

func (r *ContestRepository) Upsert(ctx context.Context, item contest.Contest) (contest.Contest, error) {
	const query = `
INSERT INTO contests (
    external_id,
    home_team_id, home_team_name, home_team_abbr,
    away_team_id, away_team_name, away_team_abbr,
    scheduled_at, status,
    home_score, away_score, period, display_clock, status_detail,
    week, season, season_type, last_refreshed_at
) VALUES (
    :external_id,
    :home_team_id, :home_team_name, :home_team_abbr,
    :away_team_id, :away_team_name, :away_team_abbr,
    :scheduled_at, :status,
    :home_score, :away_score, :period, :display_clock, :status_detail,
    :week, :season, :season_type, :last_refreshed_at
)
ON CONFLICT (external_id) DO UPDATE SET
    home_team_id = EXCLUDED.home_team_id,
    home_team_name = EXCLUDED.home_team_name,
    home_team_abbr = EXCLUDED.home_team_abbr,
    away_team_id = EXCLUDED.away_team_id,
    away_team_name = EXCLUDED.away_team_name,
    away_team_abbr = EXCLUDED.away_team_abbr,
    scheduled_at = EXCLUDED.scheduled_at,
    status = EXCLUDED.status,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    period = EXCLUDED.period,
    display_clock = EXCLUDED.display_clock,
    status_detail = EXCLUDED.status_detail,
    week = EXCLUDED.week,
    season = EXCLUDED.season,
    season_type = EXCLUDED.season_type,
    last_refreshed_at = EXCLUDED.last_refreshed_at,
    updated_at = NOW(),
    deleted_at = NULL
RETURNING id`

	args := map[string]any{
		"external_id":       item.ExternalID,
		"home_team_id":      item.HomeParticipant.ID,
		"home_team_name":    item.HomeParticipant.Name,
		"home_team_abbr":    item.HomeParticipant.Abbreviation,
		"away_team_id":      item.AwayParticipant.ID,
		"away_team_name":    item.AwayParticipant.Name,
		"away_team_abbr":    item.AwayParticipant.Abbreviation,
		"scheduled_at":      item.ScheduledAt,
		"status":            string(item.Status),
		"home_score":        item.HomeScore,
		"away_score":        item.AwayScore,
		"period":            item.Period,
		"display_clock":     item.DisplayClock,
		"status_detail":     item.StatusDetail,
		"week":              item.Week,
		"season":            item.Season,
		"season_type":       item.SeasonType,
		"last_refreshed_at": item.LastRefreshedAt,
	}

	boundSQL, boundArgs, err := sqlx.Named(query, args)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("bind upsert contest query: %w", err)
	}
	boundSQL = r.db.Rebind(boundSQL)

	var id int64
	if err := r.db.GetContext(ctx, &id, boundSQL, boundArgs...); err != nil {
		return contest.Contest{}, fmt.Errorf("upsert contest external_id=%s: %w", item.ExternalID, err)
	}

	item.ID = id
	return item, nil
}

func (r *ContestRepository) TouchRefreshedAt(ctx context.Context, externalID string) error {
	query, args, err := qb.Update("contests").
		SetExpr("last_refreshed_at", "NOW()").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("external_id", externalID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build touch contest query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("touch contest external_id=%s: %w", externalID, err)
	}
	return nil
}
