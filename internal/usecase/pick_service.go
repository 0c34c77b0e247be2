package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/pickemhq/pickem-backend/internal/domain/contest"
	"github.com/pickemhq/pickem-backend/internal/domain/group"
	"github.com/pickemhq/pickem-backend/internal/domain/pick"
	"github.com/pickemhq/pickem-backend/internal/platform/logging"
)

// PickMeta carries per-contest edit state for rendering a week.
type PickMeta struct {
	Locked     bool
	CanEdit    bool
	InProgress bool
	Final      bool
}

// ContestWithPick pairs one contest with the caller's pick on it, if any.
type ContestWithPick struct {
	Contest contest.Contest
	Pick    *pick.Pick
	Meta    PickMeta
}

// WeekView is the full read model for one user's week inside a group.
type WeekView struct {
	Season               int
	SeasonType           int
	Week                 int
	Contests             []ContestWithPick
	AvailableConfidences []int
	TotalContests        int
	PickedCount          int
	WeekPoints           int
}

// PickInput is one entry of a submit batch as received from the caller.
type PickInput struct {
	ContestID           int64   `json:"contestId" validate:"required,gt=0"`
	PickedParticipantID *string `json:"pickedParticipantId"`
	Confidence          *int    `json:"confidence"`
}

// PickService validates and stores wagers and assembles week views. All
// writes for one submission go through a single repository batch so partial
// application is impossible.
type PickService struct {
	picks    pick.Repository
	contests *ContestService
	groups   group.Repository
	scoring  *ScoringService
	logger   *logging.Logger
}

func NewPickService(
	picks pick.Repository,
	contests *ContestService,
	groups group.Repository,
	scoring *ScoringService,
	logger *logging.Logger,
) *PickService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PickService{
		picks:    picks,
		contests: contests,
		groups:   groups,
		scoring:  scoring,
		logger:   logger,
	}
}

func (s *PickService) requireMember(ctx context.Context, userID string, groupID int64) error {
	ok, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check membership group=%d: %w", groupID, err)
	}
	if !ok {
		return fmt.Errorf("%w: user %s is not in group %d", ErrNotAMember, userID, groupID)
	}
	return nil
}

// GetWeekView loads the slate for a week, the caller's picks on it, settles
// any finished-but-unscored picks, and returns the combined view.
func (s *PickService) GetWeekView(ctx context.Context, userID string, groupID int64, season, seasonType, week int, forceRefresh bool) (*WeekView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.GetWeekView")
	defer span.End()

	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	contests, err := s.contests.GetContests(ctx, season, seasonType, week, forceRefresh)
	if err != nil {
		return nil, err
	}

	picks, err := s.picks.ListForUserWeek(ctx, userID, groupID, season, seasonType, week)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}

	picks, err = s.scoring.Reconcile(ctx, groupID, contests, picks)
	if err != nil {
		return nil, err
	}

	return s.buildWeekView(season, seasonType, week, contests, picks), nil
}

// SubmitPicks validates the batch against the current slate and the caller's
// stored picks, then applies all resulting writes atomically. The rebuilt
// week view is returned on success.
func (s *PickService) SubmitPicks(ctx context.Context, userID string, groupID int64, season, seasonType, week int, inputs []PickInput) (*WeekView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitPicks")
	defer span.End()

	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: empty pick batch", ErrInvalidInput)
	}

	contests, err := s.contests.GetContests(ctx, season, seasonType, week, false)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]contest.Contest, len(contests))
	for _, c := range contests {
		byID[c.ID] = c
	}

	existing, err := s.picks.ListForUserWeek(ctx, userID, groupID, season, seasonType, week)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	existingByContest := make(map[int64]pick.Pick, len(existing))
	for _, p := range existing {
		existingByContest[p.ContestID] = p
	}

	batch, err := s.validateBatch(inputs, byID, existingByContest, userID, groupID, season, seasonType, week)
	if err != nil {
		return nil, err
	}

	if !batch.Empty() {
		if err := s.picks.ApplyBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("apply pick batch: %w", err)
		}
		s.logger.InfoContext(ctx, "picks submitted",
			"user_id", userID, "group_id", groupID,
			"week", week, "upserts", len(batch.Upserts),
			"confidence_clears", len(batch.ConfidenceClears))
	}

	picks, err := s.picks.ListForUserWeek(ctx, userID, groupID, season, seasonType, week)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	picks, err = s.scoring.Reconcile(ctx, groupID, contests, picks)
	if err != nil {
		return nil, err
	}
	return s.buildWeekView(season, seasonType, week, contests, picks), nil
}

// validateBatch runs the submission through every invariant check and turns
// it into a write batch, including the implicit confidence clears needed to
// keep confidences unique across the week.
func (s *PickService) validateBatch(
	inputs []PickInput,
	contestsByID map[int64]contest.Contest,
	existingByContest map[int64]pick.Pick,
	userID string, groupID int64, season, seasonType, week int,
) (pick.Batch, error) {
	batch := pick.Batch{
		UserID:     userID,
		GroupID:    groupID,
		Season:     season,
		SeasonType: seasonType,
		Week:       week,
	}

	seenContest := make(map[int64]bool, len(inputs))
	seenConfidence := make(map[int]int64, len(inputs))
	maxConfidence := len(contestsByID)

	for _, in := range inputs {
		target, ok := contestsByID[in.ContestID]
		if !ok {
			return pick.Batch{}, fmt.Errorf("%w: contest %d is not part of week %d", pick.ErrUnknownContest, in.ContestID, week)
		}
		if seenContest[in.ContestID] {
			return pick.Batch{}, fmt.Errorf("%w: contest %d appears more than once in batch", ErrInvalidInput, in.ContestID)
		}
		seenContest[in.ContestID] = true

		if target.Locked() {
			return pick.Batch{}, fmt.Errorf("%w: contest %d has started", pick.ErrContestLocked, in.ContestID)
		}

		if in.PickedParticipantID == nil {
			if in.Confidence != nil {
				return pick.Batch{}, fmt.Errorf("%w: confidence without a picked participant on contest %d", ErrInvalidInput, in.ContestID)
			}
			// Both fields null: withdraw the pick entirely.
			batch.FullClears = append(batch.FullClears, in.ContestID)
			continue
		}

		pid := *in.PickedParticipantID
		if pid != target.HomeParticipant.ID && pid != target.AwayParticipant.ID {
			return pick.Batch{}, fmt.Errorf("%w: participant %s does not play in contest %d", pick.ErrInvalidParticipant, pid, in.ContestID)
		}

		if in.Confidence != nil {
			conf := *in.Confidence
			if conf < 1 || conf > maxConfidence {
				return pick.Batch{}, fmt.Errorf("%w: confidence %d is outside 1..%d", pick.ErrConfidenceOutOfRange, conf, maxConfidence)
			}
			if other, dup := seenConfidence[conf]; dup {
				return pick.Batch{}, fmt.Errorf("%w: confidence %d used on contests %d and %d", pick.ErrDuplicateConfidence, conf, other, in.ContestID)
			}
			seenConfidence[conf] = in.ContestID
		}

		batch.Upserts = append(batch.Upserts, pick.Upsert{
			ContestID:           in.ContestID,
			PickedParticipantID: in.PickedParticipantID,
			Confidence:          in.Confidence,
		})
	}

	fullCleared := make(map[int64]bool, len(batch.FullClears))
	for _, contestID := range batch.FullClears {
		fullCleared[contestID] = true
	}

	// A confidence in the batch may already be attached to a different
	// contest. Clear it there when that contest is still editable, reject
	// the whole batch when it is not.
	for _, prior := range existingByContest {
		if prior.Confidence == nil || fullCleared[prior.ContestID] {
			continue
		}
		holder, claimed := seenConfidence[*prior.Confidence]
		if !claimed || holder == prior.ContestID {
			continue
		}
		target, known := contestsByID[prior.ContestID]
		if !known || target.Locked() {
			return pick.Batch{}, fmt.Errorf("%w: confidence %d belongs to locked contest %d", pick.ErrConfidenceConflictLocked, *prior.Confidence, prior.ContestID)
		}
		batch.ConfidenceClears = append(batch.ConfidenceClears, prior.ContestID)
	}
	sort.Slice(batch.ConfidenceClears, func(i, j int) bool {
		return batch.ConfidenceClears[i] < batch.ConfidenceClears[j]
	})
	sort.Slice(batch.FullClears, func(i, j int) bool {
		return batch.FullClears[i] < batch.FullClears[j]
	})

	return batch, nil
}

// ClearWeek removes the caller's picks on every still-editable contest of the
// week and reports how many were cleared.
func (s *PickService) ClearWeek(ctx context.Context, userID string, groupID int64, season, seasonType, week int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ClearWeek")
	defer span.End()

	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return 0, err
	}

	contests, err := s.contests.GetContests(ctx, season, seasonType, week, false)
	if err != nil {
		return 0, err
	}
	editable := make(map[int64]bool, len(contests))
	for _, c := range contests {
		if !c.Locked() {
			editable[c.ID] = true
		}
	}

	picks, err := s.picks.ListForUserWeek(ctx, userID, groupID, season, seasonType, week)
	if err != nil {
		return 0, fmt.Errorf("list picks: %w", err)
	}

	batch := pick.Batch{
		UserID:     userID,
		GroupID:    groupID,
		Season:     season,
		SeasonType: seasonType,
		Week:       week,
	}
	for _, p := range picks {
		if editable[p.ContestID] && (p.PickedParticipantID != nil || p.Confidence != nil) {
			batch.FullClears = append(batch.FullClears, p.ContestID)
		}
	}
	if batch.Empty() {
		return 0, nil
	}

	if err := s.picks.ApplyBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("apply clear batch: %w", err)
	}
	s.logger.InfoContext(ctx, "week cleared",
		"user_id", userID, "group_id", groupID, "week", week, "cleared", len(batch.FullClears))
	return len(batch.FullClears), nil
}

// LoadPicks returns the caller's raw picks for the week without touching the
// contest cache or scoring.
func (s *PickService) LoadPicks(ctx context.Context, userID string, groupID int64, season, seasonType, week int) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.LoadPicks")
	defer span.End()

	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	picks, err := s.picks.ListForUserWeek(ctx, userID, groupID, season, seasonType, week)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	return picks, nil
}

func (s *PickService) buildWeekView(season, seasonType, week int, contests []contest.Contest, picks []pick.Pick) *WeekView {
	pickByContest := make(map[int64]pick.Pick, len(picks))
	for _, p := range picks {
		pickByContest[p.ContestID] = p
	}

	view := &WeekView{
		Season:        season,
		SeasonType:    seasonType,
		Week:          week,
		TotalContests: len(contests),
		Contests:      make([]ContestWithPick, 0, len(contests)),
	}

	usedConfidence := make(map[int]bool, len(picks))
	for _, c := range contests {
		entry := ContestWithPick{
			Contest: c,
			Meta: PickMeta{
				Locked:     c.Locked(),
				CanEdit:    !c.Locked(),
				InProgress: c.Status == contest.StatusInProgress,
				Final:      c.Status == contest.StatusFinal,
			},
		}
		if p, ok := pickByContest[c.ID]; ok {
			cp := p
			entry.Pick = &cp
			if p.PickedParticipantID != nil {
				view.PickedCount++
			}
			if p.Confidence != nil {
				usedConfidence[*p.Confidence] = true
			}
			if p.Points != nil {
				view.WeekPoints += *p.Points
			}
		}
		view.Contests = append(view.Contests, entry)
	}

	for conf := 1; conf <= len(contests); conf++ {
		if !usedConfidence[conf] {
			view.AvailableConfidences = append(view.AvailableConfidences, conf)
		}
	}
	return view
}
