package pick

import (
	"errors"
	"time"
)

var (
	ErrUnknownContest           = errors.New("unknown contest")
	ErrContestLocked            = errors.New("contest locked")
	ErrConfidenceOutOfRange     = errors.New("confidence out of range")
	ErrDuplicateConfidence      = errors.New("duplicate confidence in batch")
	ErrInvalidParticipant       = errors.New("participant not valid for contest")
	ErrConfidenceConflictLocked = errors.New("confidence held by a locked pick")
)

// Pick is one user's wager on a contest within a group. Selection fields
// are nullable: a row can exist with no chosen winner, no rank, or both.
type Pick struct {
	ID                  int64
	UserID              string
	GroupID             int64
	ContestID           int64
	PickedParticipantID *string
	Confidence          *int
	Week                int
	Season              int
	SeasonType          int
	Won                 *bool
	Points              *int
	UpdatedAt           time.Time
}

// Scored reports whether the pick already carries a persisted result.
func (p Pick) Scored() bool {
	return p.Points != nil
}

// HasConfidence reports whether the pick holds a confidence rank.
func (p Pick) HasConfidence() bool {
	return p.Confidence != nil
}

// Upsert is one entry of a submit batch: the desired selection for a
// contest. Nil fields clear the corresponding column.
type Upsert struct {
	ContestID           int64
	PickedParticipantID *string
	Confidence          *int
}

// Batch is the full set of writes a submit resolves to. Repositories apply
// it as a single transaction: explicit clears first, then confidence-only
// clears, then upserts.
type Batch struct {
	UserID     string
	GroupID    int64
	Season     int
	SeasonType int
	Week       int
	// FullClears reset both the selection and the confidence.
	FullClears []int64
	// ConfidenceClears null out confidence only, keeping the selection so
	// the user can re-rank later.
	ConfidenceClears []int64
	Upserts          []Upsert
}

// Empty reports whether applying the batch would write nothing.
func (b Batch) Empty() bool {
	return len(b.FullClears) == 0 && len(b.ConfidenceClears) == 0 && len(b.Upserts) == 0
}
