package group

import "context"

// Repository is the membership collaborator. The core trusts its answers
// and does not re-derive membership.
type Repository interface {
	GetByID(ctx context.Context, groupID int64) (Group, bool, error)
	IsMember(ctx context.Context, groupID int64, userID string) (bool, error)
	ListMembers(ctx context.Context, groupID int64) ([]Member, error)
}
