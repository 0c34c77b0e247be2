package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pickemhq/pickem-backend/internal/domain/group"
	qb "github.com/pickemhq/pickem-backend/internal/platform/querybuilder"
)

type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) GetByID(ctx context.Context, id int64) (group.Group, bool, error) {
	query, args, err := qb.Select("id", "name").From("groups").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return group.Group{}, false, fmt.Errorf("build select group query: %w", err)
	}

	var row struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Group{}, false, nil
		}
		return group.Group{}, false, fmt.Errorf("select group by id: %w", err)
	}
	return group.Group{ID: row.ID, Name: row.Name}, true, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID int64, userID string) (bool, error) {
	query, args, err := qb.Select("1").From("group_members").
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build select membership query: %w", err)
	}

	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("select membership: %w", err)
	}
	return true, nil
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID int64) ([]group.Member, error) {
	query, args, err := qb.Select("user_id", "name", "picture_url").From("group_members").
		Where(
			qb.Eq("group_id", groupID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("name", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select members query: %w", err)
	}

	var rows []struct {
		UserID     string `db:"user_id"`
		Name       string `db:"name"`
		PictureURL string `db:"picture_url"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}

	out := make([]group.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, group.Member{
			UserID:     row.UserID,
			Name:       row.Name,
			PictureURL: row.PictureURL,
		})
	}
	return out, nil
}
