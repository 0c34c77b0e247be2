package espn

import (
	"context"
	"fmt"
	"time"

	"github.com/pickemhq/pickem-backend/internal/usecase"
)

// MockProvider serves a deterministic slate for local development so the API
// can run without reaching ESPN. Week 1 is live, everything later is
// scheduled.
type MockProvider struct {
	Now func() time.Time
}

var _ usecase.ProviderClient = (*MockProvider)(nil)

var mockMatchups = [][2]usecase.RawParticipant{
	{
		{ID: "12", Name: "Kansas City Chiefs", Abbreviation: "KC"},
		{ID: "24", Name: "Los Angeles Chargers", Abbreviation: "LAC"},
	},
	{
		{ID: "8", Name: "Detroit Lions", Abbreviation: "DET"},
		{ID: "9", Name: "Green Bay Packers", Abbreviation: "GB"},
	},
	{
		{ID: "2", Name: "Buffalo Bills", Abbreviation: "BUF"},
		{ID: "15", Name: "Miami Dolphins", Abbreviation: "MIA"},
	},
	{
		{ID: "25", Name: "San Francisco 49ers", Abbreviation: "SF"},
		{ID: "14", Name: "Los Angeles Rams", Abbreviation: "LA"},
	},
}

func (p *MockProvider) FetchContests(_ context.Context, season, seasonType, week int) ([]usecase.RawContest, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	base := now().UTC().Truncate(time.Hour)

	out := make([]usecase.RawContest, 0, len(mockMatchups))
	for i, matchup := range mockMatchups {
		item := usecase.RawContest{
			ExternalID: fmt.Sprintf("mock-%d-%d-%d-%d", season, seasonType, week, i+1),
			Home:       matchup[0],
			Away:       matchup[1],
		}
		switch {
		case week < 1:
			item.Date = base.Add(time.Duration(24*i+48) * time.Hour)
			item.Status = usecase.RawContestStatus{State: "pre"}
		case week == 1 && i == 0:
			item.Date = base.Add(-90 * time.Minute)
			item.Home.Score = 14 + i
			item.Away.Score = 10
			item.Status = usecase.RawContestStatus{State: "in", Period: 3, DisplayClock: "8:42"}
		case week == 1:
			item.Date = base.Add(-26 * time.Hour)
			item.Home.Score = 20 + i
			item.Away.Score = 17
			item.Status = usecase.RawContestStatus{State: "post", Completed: true, Detail: "Final"}
		default:
			item.Date = base.Add(time.Duration(24*(week-1)+6*i) * time.Hour)
			item.Status = usecase.RawContestStatus{State: "pre"}
		}
		out = append(out, item)
	}
	return out, nil
}
