package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pickemhq/pickem-backend/internal/domain/contest"
	"github.com/pickemhq/pickem-backend/internal/platform/logging"
	"github.com/pickemhq/pickem-backend/internal/platform/resilience"
)

const (
	// contestStaleAfter is the age past which a stored contest must be
	// refetched regardless of its status.
	contestStaleAfter = 24 * time.Hour
	// inProgressTrustWindow bounds how old the cached set may be while any
	// contest is live.
	inProgressTrustWindow = 60 * time.Second
	// imminentStartLookahead keeps a contest about to kick off from being
	// served stale.
	imminentStartLookahead = 2 * time.Minute
	// inProgressTouchInterval throttles timestamp-only bumps on unchanged
	// live rows.
	inProgressTouchInterval = 60 * time.Second
)

// ContestService owns the locally cached view of provider contests and
// decides when to trust it versus refetch.
type ContestService struct {
	repo          contest.Repository
	provider      ProviderClient
	mapFetchKey   FetchKeyMapper
	logger        *logging.Logger
	now           func() time.Time
	refreshFlight resilience.SingleFlight
}

func NewContestService(
	repo contest.Repository,
	provider ProviderClient,
	mapFetchKey FetchKeyMapper,
	logger *logging.Logger,
) *ContestService {
	if mapFetchKey == nil {
		mapFetchKey = IdentityFetchKey
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ContestService{
		repo:        repo,
		provider:    provider,
		mapFetchKey: mapFetchKey,
		logger:      logger,
		now:         time.Now,
	}
}

// GetContests returns the slate for (season, seasonType, week), serving the
// local cache when it is trustworthy and refreshing from the provider
// otherwise. Provider failures propagate; there is no stale-data fallback.
func (s *ContestService) GetContests(ctx context.Context, season, seasonType, week int, forceRefresh bool) ([]contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.GetContests")
	defer span.End()

	if season < 0 || seasonType < 0 || week < 0 {
		return nil, fmt.Errorf("%w: season, seasonType and week must be non-negative", ErrInvalidInput)
	}
	key := contest.WeekKey{Season: season, SeasonType: seasonType, Week: week}

	if !forceRefresh {
		cached, err := s.repo.ListByWeek(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("list cached contests: %w", err)
		}
		if len(cached) > 0 && s.trustworthy(cached) {
			return cached, nil
		}
	}

	flightKey := fmt.Sprintf("contests:%d:%d:%d", season, seasonType, week)
	out, err, _ := s.refreshFlight.Do(flightKey, func() (any, error) {
		return s.refresh(ctx, key, forceRefresh)
	})
	if err != nil {
		return nil, err
	}

	items, ok := out.([]contest.Contest)
	if !ok {
		return nil, fmt.Errorf("unexpected refresh result type %T", out)
	}
	return items, nil
}

// trustworthy applies the staleness policy over a non-empty cached set.
func (s *ContestService) trustworthy(cached []contest.Contest) bool {
	now := s.now().UTC()

	anyInProgress := false
	oldestRefresh := time.Time{}
	for _, item := range cached {
		if item.Status == contest.StatusInProgress {
			anyInProgress = true
		}
		if oldestRefresh.IsZero() || item.LastRefreshedAt.Before(oldestRefresh) {
			oldestRefresh = item.LastRefreshedAt
		}
	}

	if anyInProgress {
		if oldestRefresh.IsZero() || now.Sub(oldestRefresh) >= inProgressTrustWindow {
			return false
		}
		for _, item := range cached {
			if item.Status == contest.StatusScheduled && item.ScheduledAt.Sub(now) <= imminentStartLookahead {
				return false
			}
		}
		return true
	}

	for _, item := range cached {
		if item.StaleAfter(now, contestStaleAfter) {
			return false
		}
	}
	return true
}

func (s *ContestService) refresh(ctx context.Context, key contest.WeekKey, force bool) ([]contest.Contest, error) {
	fetchSeasonType, fetchWeek := s.mapFetchKey(key.Season, key.SeasonType, key.Week)

	raws, err := s.provider.FetchContests(ctx, key.Season, fetchSeasonType, fetchWeek)
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: fetch season=%d type=%d week=%d: %v", ErrProviderUnavailable, key.Season, fetchSeasonType, fetchWeek, err)
	}

	now := s.now().UTC()
	out := make([]contest.Contest, 0, len(raws))
	for _, raw := range raws {
		fresh, err := normalizeRawContest(raw, key, now)
		if err != nil {
			return nil, err
		}

		existing, exists, err := s.repo.GetByExternalID(ctx, fresh.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("get contest external_id=%s: %w", fresh.ExternalID, err)
		}
		if !exists {
			saved, err := s.repo.Upsert(ctx, fresh)
			if err != nil {
				return nil, fmt.Errorf("insert contest external_id=%s: %w", fresh.ExternalID, err)
			}
			s.logger.InfoContext(ctx, "contest created", "external_id", fresh.ExternalID, "status", fresh.Status)
			out = append(out, saved)
			continue
		}

		fresh.ID = existing.ID
		if force || existing.StaleAfter(now, contestStaleAfter) || fresh.DiffersMateriallyFrom(existing) {
			saved, err := s.repo.Upsert(ctx, fresh)
			if err != nil {
				return nil, fmt.Errorf("update contest external_id=%s: %w", fresh.ExternalID, err)
			}
			out = append(out, saved)
			continue
		}

		if existing.Status == contest.StatusInProgress && now.Sub(existing.LastRefreshedAt) > inProgressTouchInterval {
			if err := s.repo.TouchRefreshedAt(ctx, existing.ExternalID); err != nil {
				return nil, fmt.Errorf("touch contest external_id=%s: %w", existing.ExternalID, err)
			}
			existing.LastRefreshedAt = now
		}
		out = append(out, existing)
	}

	return out, nil
}

// ClosestWeek returns the first stored week for (season, seasonType) that
// still has a non-final contest, the last stored week when everything is
// final, and 0 when nothing is stored yet.
func (s *ContestService) ClosestWeek(ctx context.Context, season, seasonType int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.ClosestWeek")
	defer span.End()

	weeks, err := s.repo.ListWeeks(ctx, season, seasonType)
	if err != nil {
		return 0, fmt.Errorf("list weeks: %w", err)
	}
	if len(weeks) == 0 {
		return 0, nil
	}

	for _, week := range weeks {
		items, err := s.repo.ListByWeek(ctx, contest.WeekKey{Season: season, SeasonType: seasonType, Week: week})
		if err != nil {
			return 0, fmt.Errorf("list contests week=%d: %w", week, err)
		}
		for _, item := range items {
			if item.Status != contest.StatusFinal {
				return week, nil
			}
		}
	}

	return weeks[len(weeks)-1], nil
}

func normalizeRawContest(raw RawContest, key contest.WeekKey, now time.Time) (contest.Contest, error) {
	status, ok := contest.NormalizeStatus(raw.Status.State, raw.Status.Completed)
	if !ok {
		return contest.Contest{}, fmt.Errorf("unmapped provider status state=%q completed=%v external_id=%s", raw.Status.State, raw.Status.Completed, raw.ExternalID)
	}
	if raw.ExternalID == "" {
		return contest.Contest{}, fmt.Errorf("provider contest has no external id")
	}

	return contest.Contest{
		ExternalID: raw.ExternalID,
		HomeParticipant: contest.Participant{
			ID:           raw.Home.ID,
			Name:         raw.Home.Name,
			Abbreviation: raw.Home.Abbreviation,
		},
		AwayParticipant: contest.Participant{
			ID:           raw.Away.ID,
			Name:         raw.Away.Name,
			Abbreviation: raw.Away.Abbreviation,
		},
		ScheduledAt:     raw.Date.UTC(),
		Status:          status,
		HomeScore:       raw.Home.Score,
		AwayScore:       raw.Away.Score,
		Period:          raw.Status.Period,
		DisplayClock:    raw.Status.DisplayClock,
		StatusDetail:    raw.Status.Detail,
		Week:            key.Week,
		Season:          key.Season,
		SeasonType:      key.SeasonType,
		LastRefreshedAt: now,
	}, nil
}
