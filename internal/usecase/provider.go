package usecase

import (
	"context"
	"time"
)

// RawParticipant is one competitor as the provider reports it.
type RawParticipant struct {
	ID           string
	Name         string
	Abbreviation string
	Score        int
}

// RawContestStatus is the provider's native status object: a tri-state
// plus a completed flag, with free-text detail alongside.
type RawContestStatus struct {
	// State is "pre", "in" or "post".
	State        string
	Completed    bool
	Detail       string
	Period       int
	DisplayClock string
}

// RawContest is one matchup as fetched from the provider, before
// normalization.
type RawContest struct {
	ExternalID string
	Date       time.Time
	Home       RawParticipant
	Away       RawParticipant
	Status     RawContestStatus
}

// ProviderClient fetches the weekly slate from the upstream contest data
// source. Implementations may be live HTTP clients or canned fixtures.
type ProviderClient interface {
	FetchContests(ctx context.Context, season, seasonType, week int) ([]RawContest, error)
}

// FetchKeyMapper rewrites the (seasonType, week) pair used when querying
// the provider. Some deployments alias regular-season week 0 onto another
// slate while storing it locally under the requested key.
type FetchKeyMapper func(season, seasonType, week int) (fetchSeasonType, fetchWeek int)

// IdentityFetchKey queries the provider with the caller's key unchanged.
func IdentityFetchKey(_, seasonType, week int) (int, int) {
	return seasonType, week
}

// Week0FetchKey aliases week 0 of the regular season onto the given pair
// and leaves every other key alone.
func Week0FetchKey(aliasSeasonType, aliasWeek int) FetchKeyMapper {
	return func(_, seasonType, week int) (int, int) {
		if seasonType == SeasonTypeRegular && week == 0 {
			return aliasSeasonType, aliasWeek
		}
		return seasonType, week
	}
}

const (
	SeasonTypePreseason  = 1
	SeasonTypeRegular    = 2
	SeasonTypePostseason = 3
)

// CurrentSeason returns the season year for a calendar instant. January
// and February still belong to the previous year's season.
func CurrentSeason(now time.Time) int {
	year := now.Year()
	if now.Month() <= time.February {
		return year - 1
	}
	return year
}
