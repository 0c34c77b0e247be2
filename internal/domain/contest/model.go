package contest

import "time"

// Status is the local 3-state view of a contest's lifecycle. Provider
// vocabularies are collapsed onto it by NormalizeStatus.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinal      Status = "FINAL"
)

// Participant is one side of a contest.
type Participant struct {
	ID           string
	Name         string
	Abbreviation string
}

// Contest represents one scheduled matchup, normalized from provider data.
type Contest struct {
	ID              int64
	ExternalID      string
	HomeParticipant Participant
	AwayParticipant Participant
	ScheduledAt     time.Time
	Status          Status
	HomeScore       int
	AwayScore       int
	Period          int
	DisplayClock    string
	StatusDetail    string
	Week            int
	Season          int
	SeasonType      int
	LastRefreshedAt time.Time
}

// NormalizeStatus maps the provider's state/completed pair onto the local
// model. The provider's free-text description is deliberately ignored.
// Unknown states fall through to (zero, false) so callers fail loudly.
func NormalizeStatus(state string, completed bool) (Status, bool) {
	if completed {
		return StatusFinal, true
	}
	switch state {
	case "pre":
		return StatusScheduled, true
	case "in":
		return StatusInProgress, true
	case "post":
		return StatusFinal, true
	default:
		return "", false
	}
}

// Locked reports whether picks referencing this contest can no longer be
// edited by their owner.
func (c Contest) Locked() bool {
	return c.Status != StatusScheduled
}

// Winner returns the participant id with the strictly higher score. A level
// final yields ("", false): no winner, picks stay unscored.
func (c Contest) Winner() (string, bool) {
	switch {
	case c.HomeScore > c.AwayScore:
		return c.HomeParticipant.ID, true
	case c.AwayScore > c.HomeScore:
		return c.AwayParticipant.ID, true
	default:
		return "", false
	}
}

// DiffersMateriallyFrom reports whether incoming provider data carries a
// change worth rewriting the stored row for. Field set mirrors what the
// poll loop can actually observe moving.
func (c Contest) DiffersMateriallyFrom(other Contest) bool {
	return !c.ScheduledAt.Equal(other.ScheduledAt) ||
		c.Status != other.Status ||
		c.HomeScore != other.HomeScore ||
		c.AwayScore != other.AwayScore ||
		c.Period != other.Period ||
		c.DisplayClock != other.DisplayClock ||
		c.StatusDetail != other.StatusDetail
}

// StaleAfter reports whether the row has gone unrefreshed past maxAge.
func (c Contest) StaleAfter(now time.Time, maxAge time.Duration) bool {
	if c.LastRefreshedAt.IsZero() {
		return true
	}
	return now.Sub(c.LastRefreshedAt) > maxAge
}
