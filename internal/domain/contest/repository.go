package contest

import "context"

// WeekKey partitions contests into the sets callers query by.
type WeekKey struct {
	Season     int
	SeasonType int
	Week       int
}

// Repository exposes contest storage operations.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID string) (Contest, bool, error)
	ListByWeek(ctx context.Context, key WeekKey) ([]Contest, error)
	// ListWeeks returns the distinct weeks stored for a season/type in
	// ascending order.
	ListWeeks(ctx context.Context, season, seasonType int) ([]int, error)
	Upsert(ctx context.Context, item Contest) (Contest, error)
	// TouchRefreshedAt bumps last_refreshed_at without rewriting the row.
	TouchRefreshedAt(ctx context.Context, externalID string) error
}
