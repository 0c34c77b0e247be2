package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/pickemhq/pickem-backend/internal/domain/contest"
	"github.com/pickemhq/pickem-backend/internal/domain/group"
	"github.com/pickemhq/pickem-backend/internal/domain/pick"
	"github.com/pickemhq/pickem-backend/internal/platform/logging"
)

const (
	finalizeWorkerCount   = 4
	scoreboardWorkerCount = 8
)

// ScoreboardRow is one member's season standing inside a group.
type ScoreboardRow struct {
	UserID       string
	Name         string
	PictureURL   string
	TotalPoints  int
	CorrectPicks int
	WeekPoints   map[int]int
}

// ScoringService settles picks against finished contests. Settlement is
// set-based and group-wide, so the first viewer of a finished contest scores
// every member's pick on it, and rescoring an already scored pick is a no-op.
type ScoringService struct {
	picks    pick.Repository
	groups   group.Repository
	contests contest.Repository
	logger   *logging.Logger
}

func NewScoringService(picks pick.Repository, groups group.Repository, contests contest.Repository, logger *logging.Logger) *ScoringService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ScoringService{
		picks:    picks,
		groups:   groups,
		contests: contests,
		logger:   logger,
	}
}

// Reconcile scores the given picks in memory against final contests and
// kicks off group-wide persistence for every contest that produced a score.
// Persistence failures are logged rather than surfaced so a read never fails
// because settlement lagged; the unscored picks stay eligible for the next
// reconcile.
func (s *ScoringService) Reconcile(ctx context.Context, groupID int64, contests []contest.Contest, picks []pick.Pick) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Reconcile")
	defer span.End()

	byID := make(map[int64]contest.Contest, len(contests))
	for _, c := range contests {
		byID[c.ID] = c
	}

	var updates []pick.ScoreUpdate
	seen := make(map[int64]bool)
	for i := range picks {
		p := &picks[i]
		if p.Scored() || p.PickedParticipantID == nil {
			continue
		}
		c, ok := byID[p.ContestID]
		if !ok || c.Status != contest.StatusFinal {
			continue
		}
		winner, decided := c.Winner()
		if !decided {
			// Ties never settle.
			continue
		}

		won := *p.PickedParticipantID == winner
		points := 0
		if p.Confidence != nil {
			if won {
				points = *p.Confidence
			} else {
				points = -*p.Confidence
			}
		}
		p.Won = &won
		p.Points = &points

		if !seen[c.ID] {
			seen[c.ID] = true
			updates = append(updates, pick.ScoreUpdate{
				GroupID:              groupID,
				ContestID:            c.ID,
				WinningParticipantID: winner,
			})
		}
	}

	if len(updates) > 0 {
		s.persistScores(ctx, updates)
	}
	return picks, nil
}

// persistScores fans the set-based updates out over a worker pool. Each
// update settles every member's pick on its contest in one statement.
func (s *ScoringService) persistScores(ctx context.Context, updates []pick.ScoreUpdate) {
	workers := finalizeWorkerCount
	if len(updates) < workers {
		workers = len(updates)
	}
	p, err := ants.NewPool(workers)
	if err != nil {
		s.logger.ErrorContext(ctx, "create scoring pool", "error", err)
		return
	}
	defer p.Release()

	var wg sync.WaitGroup
	for _, update := range updates {
		update := update
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			affected, err := s.picks.FinalizeScores(ctx, update)
			if err != nil {
				s.logger.ErrorContext(ctx, "finalize scores",
					"group_id", update.GroupID, "contest_id", update.ContestID, "error", err)
				return
			}
			if affected > 0 {
				s.logger.InfoContext(ctx, "scores finalized",
					"group_id", update.GroupID, "contest_id", update.ContestID, "picks", affected)
			}
		}); err != nil {
			wg.Done()
			s.logger.ErrorContext(ctx, "submit scoring task", "error", err)
		}
	}
	wg.Wait()
}

// PersistFinalScores settles one finished contest for a whole group and
// returns how many picks were written. Callers that need the error use this
// instead of Reconcile.
func (s *ScoringService) PersistFinalScores(ctx context.Context, groupID int64, c contest.Contest) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.PersistFinalScores")
	defer span.End()

	if c.Status != contest.StatusFinal {
		return 0, fmt.Errorf("%w: contest %d is not final", ErrInvalidInput, c.ID)
	}
	winner, decided := c.Winner()
	if !decided {
		return 0, nil
	}
	affected, err := s.picks.FinalizeScores(ctx, pick.ScoreUpdate{
		GroupID:              groupID,
		ContestID:            c.ID,
		WinningParticipantID: winner,
	})
	if err != nil {
		return 0, fmt.Errorf("finalize scores contest=%d: %w", c.ID, err)
	}
	return affected, nil
}

// Scoreboard aggregates every member's season total for a group, sorted by
// total points descending with name as tiebreaker. Contests that finished
// since the last week read are settled first, so the totals never lag
// behind a final result nobody happened to view.
func (s *ScoringService) Scoreboard(ctx context.Context, userID string, groupID int64, season, seasonType int) ([]ScoreboardRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Scoreboard")
	defer span.End()

	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership group=%d: %w", groupID, err)
	}
	if !member {
		return nil, fmt.Errorf("%w: user %s is not in group %d", ErrNotAMember, userID, groupID)
	}

	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members group=%d: %w", groupID, err)
	}

	picks, err := s.picks.ListForGroupSeason(ctx, groupID, season, seasonType)
	if err != nil {
		return nil, fmt.Errorf("list group picks: %w", err)
	}

	slate, err := s.contestsForPicks(ctx, season, seasonType, picks)
	if err != nil {
		return nil, err
	}
	picks, err = s.Reconcile(ctx, groupID, slate, picks)
	if err != nil {
		return nil, err
	}

	picksByUser := make(map[string][]pick.Pick, len(members))
	for _, p := range picks {
		picksByUser[p.UserID] = append(picksByUser[p.UserID], p)
	}

	rows := make([]ScoreboardRow, len(members))
	agg := pool.New().WithMaxGoroutines(scoreboardWorkerCount)
	for i, m := range members {
		i, m := i, m
		agg.Go(func() {
			row := ScoreboardRow{
				UserID:     m.UserID,
				Name:       m.Name,
				PictureURL: m.PictureURL,
				WeekPoints: make(map[int]int),
			}
			for _, p := range picksByUser[m.UserID] {
				if p.Points == nil {
					continue
				}
				row.TotalPoints += *p.Points
				row.WeekPoints[p.Week] += *p.Points
				if p.Won != nil && *p.Won {
					row.CorrectPicks++
				}
			}
			rows[i] = row
		})
	}
	agg.Wait()

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}

// contestsForPicks loads the stored contests for every week that still has
// an unscored pick. Reads the cache only; no provider call.
func (s *ScoringService) contestsForPicks(ctx context.Context, season, seasonType int, picks []pick.Pick) ([]contest.Contest, error) {
	weeks := make(map[int]bool)
	for _, p := range picks {
		if p.Scored() || p.PickedParticipantID == nil {
			continue
		}
		weeks[p.Week] = true
	}

	var slate []contest.Contest
	for wk := range weeks {
		cs, err := s.contests.ListByWeek(ctx, contest.WeekKey{Season: season, SeasonType: seasonType, Week: wk})
		if err != nil {
			return nil, fmt.Errorf("list contests week=%d: %w", wk, err)
		}
		slate = append(slate, cs...)
	}
	return slate, nil
}
