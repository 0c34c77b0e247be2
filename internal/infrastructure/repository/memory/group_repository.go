package memory

import (
	"context"
	"sync"

	"github.com/pickemhq/pickem-backend/internal/domain/group"
)

type GroupRepository struct {
	mu      sync.RWMutex
	groups  map[int64]group.Group
	members map[int64][]group.Member
}

func NewGroupRepository(groups []group.Group, members map[int64][]group.Member) *GroupRepository {
	byID := make(map[int64]group.Group, len(groups))
	for _, item := range groups {
		byID[item.ID] = item
	}
	if members == nil {
		members = make(map[int64][]group.Member)
	}
	return &GroupRepository{groups: byID, members: members}
}

func (r *GroupRepository) GetByID(_ context.Context, id int64) (group.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[id]
	return g, ok, nil
}

func (r *GroupRepository) IsMember(_ context.Context, groupID int64, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members[groupID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *GroupRepository) ListMembers(_ context.Context, groupID int64) ([]group.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.members[groupID]
	out := make([]group.Member, 0, len(items))
	out = append(out, items...)
	return out, nil
}
