package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pickemhq/pickem-backend/internal/domain/contest"
)

type ContestRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]contest.Contest
	byExt  map[string]int64
}

func NewContestRepository() *ContestRepository {
	return &ContestRepository{
		nextID: 1,
		items:  make(map[int64]contest.Contest),
		byExt:  make(map[string]int64),
	}
}

func (r *ContestRepository) GetByExternalID(_ context.Context, externalID string) (contest.Contest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExt[externalID]
	if !ok {
		return contest.Contest{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *ContestRepository) ListByWeek(_ context.Context, key contest.WeekKey) ([]contest.Contest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contest.Contest, 0)
	for _, item := range r.items {
		if item.Season == key.Season && item.SeasonType == key.SeasonType && item.Week == key.Week {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ContestRepository) ListWeeks(_ context.Context, season, seasonType int) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int]bool)
	for _, item := range r.items {
		if item.Season == season && item.SeasonType == seasonType {
			seen[item.Week] = true
		}
	}
	weeks := make([]int, 0, len(seen))
	for week := range seen {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	return weeks, nil
}

func (r *ContestRepository) Upsert(_ context.Context, item contest.Contest) (contest.Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existingID, ok := r.byExt[item.ExternalID]; ok {
		item.ID = existingID
	} else if item.ID == 0 {
		item.ID = r.nextID
		r.nextID++
	}
	r.items[item.ID] = item
	r.byExt[item.ExternalID] = item.ID
	return item, nil
}

func (r *ContestRepository) TouchRefreshedAt(_ context.Context, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byExt[externalID]
	if !ok {
		return nil
	}
	item := r.items[id]
	item.LastRefreshedAt = time.Now().UTC()
	r.items[id] = item
	return nil
}
