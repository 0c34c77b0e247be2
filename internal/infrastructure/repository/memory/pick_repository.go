package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pickemhq/pickem-backend/internal/domain/pick"
)

type PickRepository struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]pick.Pick
}

func NewPickRepository() *PickRepository {
	return &PickRepository{
		nextID: 1,
		items:  make(map[int64]pick.Pick),
	}
}

func (r *PickRepository) ListForUserWeek(_ context.Context, userID string, groupID int64, season, seasonType, week int) ([]pick.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if item.UserID == userID && item.GroupID == groupID &&
			item.Season == season && item.SeasonType == seasonType && item.Week == week {
			out = append(out, clonePick(item))
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) ListForGroupSeason(_ context.Context, groupID int64, season, seasonType int) ([]pick.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if item.GroupID == groupID && item.Season == season && item.SeasonType == seasonType {
			out = append(out, clonePick(item))
		}
	}
	sortPicks(out)
	return out, nil
}

// ApplyBatch mirrors the transactional semantics of the SQL implementation:
// the whole batch is validated against current state first, then applied
// under one lock so concurrent submitters cannot interleave.
func (r *PickRepository) ApplyBatch(_ context.Context, batch pick.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	byContest := make(map[int64]int64)
	for id, item := range r.items {
		if item.UserID == batch.UserID && item.GroupID == batch.GroupID &&
			item.Season == batch.Season && item.SeasonType == batch.SeasonType && item.Week == batch.Week {
			byContest[item.ContestID] = id
		}
	}

	// Confidence uniqueness check runs against the post-batch state, same
	// as the partial unique index does in postgres.
	taken := make(map[int]int64)
	cleared := make(map[int64]bool)
	for _, contestID := range batch.ConfidenceClears {
		cleared[contestID] = true
	}
	fullCleared := make(map[int64]bool)
	for _, contestID := range batch.FullClears {
		fullCleared[contestID] = true
	}
	upserted := make(map[int64]bool)
	for _, up := range batch.Upserts {
		upserted[up.ContestID] = true
		if up.Confidence != nil {
			if other, dup := taken[*up.Confidence]; dup {
				return fmt.Errorf("confidence %d claimed by contests %d and %d", *up.Confidence, other, up.ContestID)
			}
			taken[*up.Confidence] = up.ContestID
		}
	}
	for contestID, id := range byContest {
		if upserted[contestID] || cleared[contestID] || fullCleared[contestID] {
			continue
		}
		item := r.items[id]
		if item.Confidence == nil {
			continue
		}
		if other, dup := taken[*item.Confidence]; dup {
			return fmt.Errorf("confidence %d claimed by contests %d and %d", *item.Confidence, other, contestID)
		}
		taken[*item.Confidence] = contestID
	}

	for _, contestID := range batch.FullClears {
		if id, ok := byContest[contestID]; ok {
			item := r.items[id]
			item.PickedParticipantID = nil
			item.Confidence = nil
			item.Won = nil
			item.Points = nil
			item.UpdatedAt = now
			r.items[id] = item
		}
	}

	for _, contestID := range batch.ConfidenceClears {
		if id, ok := byContest[contestID]; ok {
			item := r.items[id]
			item.Confidence = nil
			item.UpdatedAt = now
			r.items[id] = item
		}
	}

	for _, up := range batch.Upserts {
		if id, ok := byContest[up.ContestID]; ok {
			item := r.items[id]
			if !sameParticipant(item.PickedParticipantID, up.PickedParticipantID) {
				// Switching sides (or clearing) resets any stale result.
				item.Won = nil
				item.Points = nil
			}
			item.PickedParticipantID = cloneString(up.PickedParticipantID)
			item.Confidence = cloneInt(up.Confidence)
			item.UpdatedAt = now
			r.items[id] = item
			continue
		}
		r.items[r.nextID] = pick.Pick{
			ID:                  r.nextID,
			UserID:              batch.UserID,
			GroupID:             batch.GroupID,
			ContestID:           up.ContestID,
			PickedParticipantID: cloneString(up.PickedParticipantID),
			Confidence:          cloneInt(up.Confidence),
			Week:                batch.Week,
			Season:              batch.Season,
			SeasonType:          batch.SeasonType,
			UpdatedAt:           now,
		}
		r.nextID++
	}

	return nil
}

func (r *PickRepository) FinalizeScores(_ context.Context, update pick.ScoreUpdate) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var affected int64
	for id, item := range r.items {
		if item.GroupID != update.GroupID || item.ContestID != update.ContestID {
			continue
		}
		if item.Points != nil || item.PickedParticipantID == nil {
			continue
		}
		won := *item.PickedParticipantID == update.WinningParticipantID
		points := 0
		if item.Confidence != nil {
			if won {
				points = *item.Confidence
			} else {
				points = -*item.Confidence
			}
		}
		item.Won = &won
		item.Points = &points
		item.UpdatedAt = now
		r.items[id] = item
		affected++
	}
	return affected, nil
}

func sortPicks(items []pick.Pick) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

func clonePick(p pick.Pick) pick.Pick {
	copied := p
	copied.PickedParticipantID = cloneString(p.PickedParticipantID)
	copied.Confidence = cloneInt(p.Confidence)
	copied.Won = cloneBool(p.Won)
	copied.Points = cloneInt(p.Points)
	return copied
}

func sameParticipant(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
