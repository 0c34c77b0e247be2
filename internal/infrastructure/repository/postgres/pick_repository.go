package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pickemhq/pickem-backend/internal/domain/pick"
	qb "github.com/pickemhq/pickem-backend/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) ListForUserWeek(ctx context.Context, userID string, groupID int64, season, seasonType, week int) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("group_id", groupID),
			qb.Eq("season", season),
			qb.Eq("season_type", seasonType),
			qb.Eq("week", week),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks by week query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks by week: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PickRepository) ListForGroupSeason(ctx context.Context, groupID int64, season, seasonType int) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("season", season),
			qb.Eq("season_type", seasonType),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id", "week", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select group picks query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select group picks: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ApplyBatch runs every write of one submission in a single transaction.
// Clears run before upserts so a confidence freed inside the batch is
// available again before the unique index sees its new holder.
func (r *PickRepository) ApplyBatch(ctx context.Context, batch pick.Batch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for pick batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if len(batch.FullClears) > 0 {
		if err := r.clearPicks(ctx, tx, batch, batch.FullClears, true); err != nil {
			return err
		}
	}
	if len(batch.ConfidenceClears) > 0 {
		if err := r.clearPicks(ctx, tx, batch, batch.ConfidenceClears, false); err != nil {
			return err
		}
	}

	const upsertQuery = `
INSERT INTO picks (
    user_id, group_id, contest_id,
    picked_participant_id, confidence,
    week, season, season_type
) VALUES (
    :user_id, :group_id, :contest_id,
    :picked_participant_id, :confidence,
    :week, :season, :season_type
)
ON CONFLICT (user_id, group_id, contest_id) DO UPDATE SET
    picked_participant_id = EXCLUDED.picked_participant_id,
    confidence = EXCLUDED.confidence,
    won = CASE
        WHEN picks.picked_participant_id IS DISTINCT FROM EXCLUDED.picked_participant_id
        THEN NULL ELSE picks.won END,
    points = CASE
        WHEN picks.picked_participant_id IS DISTINCT FROM EXCLUDED.picked_participant_id
        THEN NULL ELSE picks.points END,
    updated_at = NOW(),
    deleted_at = NULL`

	for _, up := range batch.Upserts {
		boundSQL, boundArgs, err := sqlx.Named(upsertQuery, map[string]any{
			"user_id":               batch.UserID,
			"group_id":              batch.GroupID,
			"contest_id":            up.ContestID,
			"picked_participant_id": up.PickedParticipantID,
			"confidence":            up.Confidence,
			"week":                  batch.Week,
			"season":                batch.Season,
			"season_type":           batch.SeasonType,
		})
		if err != nil {
			return fmt.Errorf("bind upsert pick contest=%d query: %w", up.ContestID, err)
		}
		boundSQL = tx.Rebind(boundSQL)
		if _, err := tx.ExecContext(ctx, boundSQL, boundArgs...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: contest %d", pick.ErrDuplicateConfidence, up.ContestID)
			}
			return fmt.Errorf("upsert pick contest=%d: %w", up.ContestID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pick batch tx: %w", err)
	}
	return nil
}

func (r *PickRepository) clearPicks(ctx context.Context, tx *sqlx.Tx, batch pick.Batch, contestIDs []int64, full bool) error {
	ids := make([]any, 0, len(contestIDs))
	for _, id := range contestIDs {
		ids = append(ids, id)
	}

	builder := qb.Update("picks").
		Set("confidence", nil).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("user_id", batch.UserID),
			qb.Eq("group_id", batch.GroupID),
			qb.In("contest_id", ids),
			qb.IsNull("deleted_at"),
		)
	if full {
		builder = builder.
			Set("picked_participant_id", nil).
			Set("won", nil).
			Set("points", nil)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build clear picks query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear picks: %w", err)
	}
	return nil
}

// FinalizeScores settles every unscored pick on one contest for a whole
// group in a single statement. Already scored rows carry points and are
// excluded by the predicate, which is what makes rescoring a no-op.
func (r *PickRepository) FinalizeScores(ctx context.Context, update pick.ScoreUpdate) (int64, error) {
	const query = `
UPDATE picks SET
    won = (picked_participant_id = :winner_id),
    points = CASE
        WHEN picked_participant_id = :winner_id THEN COALESCE(confidence, 0)
        ELSE -COALESCE(confidence, 0) END,
    updated_at = NOW()
WHERE group_id = :group_id
  AND contest_id = :contest_id
  AND points IS NULL
  AND picked_participant_id IS NOT NULL
  AND deleted_at IS NULL`

	boundSQL, boundArgs, err := sqlx.Named(query, map[string]any{
		"winner_id":  update.WinningParticipantID,
		"group_id":   update.GroupID,
		"contest_id": update.ContestID,
	})
	if err != nil {
		return 0, fmt.Errorf("bind finalize scores query: %w", err)
	}
	boundSQL = r.db.Rebind(boundSQL)

	result, err := r.db.ExecContext(ctx, boundSQL, boundArgs...)
	if err != nil {
		return 0, fmt.Errorf("finalize scores contest=%d: %w", update.ContestID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count finalized picks: %w", err)
	}
	return affected, nil
}
