package pick

import "context"

// ScoreUpdate carries the fan-out write for one finalized contest.
type ScoreUpdate struct {
	GroupID              int64
	ContestID            int64
	WinningParticipantID string
}

// Repository is the transactional store of wagers.
type Repository interface {
	ListForUserWeek(ctx context.Context, userID string, groupID int64, season, seasonType, week int) ([]Pick, error)
	ListForGroupSeason(ctx context.Context, groupID int64, season, seasonType int) ([]Pick, error)
	// ApplyBatch executes every write in the batch atomically. A concurrent
	// reader never observes a half-applied batch.
	ApplyBatch(ctx context.Context, batch Batch) error
	// FinalizeScores sets won/points for every pick in the group on the
	// contest that still has null points and a chosen participant, as one
	// set-based write. Returns the number of rows touched; repeated calls
	// are no-ops.
	FinalizeScores(ctx context.Context, update ScoreUpdate) (int64, error)
}
