package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pickemhq/pickem-backend/internal/platform/resilience"
	"github.com/pickemhq/pickem-backend/internal/usecase"
)

const scoreboardFixture = `{
  "events": [
    {
      "id": "401547401",
      "date": "2026-09-06T17:00Z",
      "competitions": [
        {
          "date": "2026-09-06T17:00Z",
          "competitors": [
            {
              "homeAway": "home",
              "score": "24",
              "team": {"id": "12", "displayName": "Kansas City Chiefs", "abbreviation": "KC"}
            },
            {
              "homeAway": "away",
              "score": "10",
              "team": {"id": "24", "displayName": "Los Angeles Chargers", "abbreviation": "LAC"}
            }
          ],
          "status": {
            "period": 4,
            "displayClock": "0:00",
            "type": {"state": "post", "completed": true, "shortDetail": "Final"}
          }
        }
      ]
    },
    {
      "id": "401547402",
      "date": "2026-09-06T20:25Z",
      "competitions": [
        {
          "competitors": [
            {"homeAway": "home", "score": "0", "team": {"id": "8", "displayName": "Detroit Lions", "abbreviation": "DET"}},
            {"homeAway": "away", "score": "0", "team": {"id": "9", "displayName": "Green Bay Packers", "abbreviation": "GB"}}
          ],
          "status": {"period": 0, "displayClock": "0:00", "type": {"state": "pre", "completed": false, "shortDetail": "9/6 - 4:25 PM EDT"}}
        }
      ]
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	})
	return client, server
}

func TestFetchContests_MapsScoreboard(t *testing.T) {
	t.Parallel()

	var gotQuery atomic.Value
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		_, _ = w.Write([]byte(scoreboardFixture))
	})

	contests, err := client.FetchContests(context.Background(), 2026, 2, 1)
	if err != nil {
		t.Fatalf("fetch contests: %v", err)
	}
	if len(contests) != 2 {
		t.Fatalf("expected 2 contests, got=%d", len(contests))
	}

	final := contests[0]
	if final.ExternalID != "401547401" {
		t.Fatalf("unexpected external id: %s", final.ExternalID)
	}
	if final.Home.ID != "12" || final.Home.Score != 24 {
		t.Fatalf("unexpected home side: %+v", final.Home)
	}
	if final.Away.Abbreviation != "LAC" || final.Away.Score != 10 {
		t.Fatalf("unexpected away side: %+v", final.Away)
	}
	if final.Status.State != "post" || !final.Status.Completed || final.Status.Period != 4 {
		t.Fatalf("unexpected status: %+v", final.Status)
	}
	wantDate := time.Date(2026, time.September, 6, 17, 0, 0, 0, time.UTC)
	if !final.Date.Equal(wantDate) {
		t.Fatalf("unexpected date: got=%s want=%s", final.Date, wantDate)
	}

	upcoming := contests[1]
	if upcoming.Status.State != "pre" || upcoming.Home.Score != 0 {
		t.Fatalf("unexpected upcoming contest: %+v", upcoming)
	}

	query, _ := gotQuery.Load().(string)
	for _, fragment := range []string{"year=2026", "seasontype=2", "week=1"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("query missing %q: %s", fragment, query)
		}
	}
}

func TestFetchContests_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(scoreboardFixture))
	})

	if _, err := client.FetchContests(context.Background(), 2026, 2, 1); err != nil {
		t.Fatalf("fetch contests: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, calls=%d", calls.Load())
	}
}

func TestFetchContests_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.FetchContests(context.Background(), 2026, 2, 1); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("client error must not be retried, calls=%d", calls.Load())
	}
}

func TestFetchContests_CircuitOpens(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.FetchContests(ctx, 2026, 2, 1); err == nil {
			t.Fatalf("attempt %d: expected failure", i)
		}
	}

	_, err := client.FetchContests(ctx, 2026, 2, 1)
	if !errors.Is(err, usecase.ErrProviderUnavailable) {
		t.Fatalf("expected open circuit to map to ErrProviderUnavailable, got %v", err)
	}
}

func TestMockProvider_LiveWeek(t *testing.T) {
	t.Parallel()

	provider := &MockProvider{}
	contests, err := provider.FetchContests(context.Background(), 2026, 2, 1)
	if err != nil {
		t.Fatalf("mock fetch: %v", err)
	}
	if len(contests) == 0 {
		t.Fatal("mock provider returned no contests")
	}
	if contests[0].Status.State != "in" {
		t.Fatalf("expected first week-1 contest live, got %q", contests[0].Status.State)
	}
	for _, c := range contests {
		if c.Home.ID == "" || c.Away.ID == "" {
			t.Fatalf("mock contest missing a side: %+v", c)
		}
	}
}
