package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/pickemhq/pickem-backend/internal/domain/contest"
	"github.com/pickemhq/pickem-backend/internal/domain/user"
	"github.com/pickemhq/pickem-backend/internal/infrastructure/repository/memory"
	"github.com/pickemhq/pickem-backend/internal/usecase"
)

type stubVerifier struct {
	principals map[string]user.Principal
}

func (v *stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v.principals[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return principal, nil
}

type stubProvider struct{}

func (p *stubProvider) FetchContests(context.Context, int, int, int) ([]usecase.RawContest, error) {
	return nil, fmt.Errorf("provider should not be reached")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	contestRepo := memory.NewContestRepository()
	pickRepo := memory.NewPickRepository()
	groupRepo := memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())

	now := time.Now().UTC()
	for i, kickoffIn := range []time.Duration{3 * time.Hour, 4 * time.Hour} {
		_, err := contestRepo.Upsert(context.Background(), contest.Contest{
			ExternalID:      fmt.Sprintf("espn-%d", i+1),
			HomeParticipant: contest.Participant{ID: fmt.Sprintf("home-%d", i+1), Name: "Home"},
			AwayParticipant: contest.Participant{ID: fmt.Sprintf("away-%d", i+1), Name: "Away"},
			ScheduledAt:     now.Add(kickoffIn),
			Status:          contest.StatusScheduled,
			Season:          2026,
			SeasonType:      usecase.SeasonTypeRegular,
			Week:            1,
			LastRefreshedAt: now,
		})
		if err != nil {
			t.Fatalf("seed contest: %v", err)
		}
	}

	contestSvc := usecase.NewContestService(contestRepo, &stubProvider{}, nil, nil)
	scoringSvc := usecase.NewScoringService(pickRepo, groupRepo, contestRepo, nil)
	pickSvc := usecase.NewPickService(pickRepo, contestSvc, groupRepo, scoringSvc, nil)

	verifier := &stubVerifier{principals: map[string]user.Principal{
		"token-alice": {ID: "user-alice", Name: "Alice Chen"},
	}}

	handler := NewHandler(contestSvc, pickSvc, scoringSvc, nil)
	router := NewRouter(handler, verifier, nil, []string{"*"})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func TestRouter_Healthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestRouter_ListContests(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/contests?season=2026&seasonType=2&week=1")
	if err != nil {
		t.Fatalf("get contests: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body := decodeEnvelope(t, resp)
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data array, got %T", body["data"])
	}
	if len(data) != 2 {
		t.Fatalf("expected 2 contests, got %d", len(data))
	}
}

func TestRouter_PicksRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/groups/1/picks?season=2026&seasonType=2&week=1")
	if err != nil {
		t.Fatalf("get picks: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.StatusCode)
	}
}

func TestRouter_SubmitAndReadPicks(t *testing.T) {
	srv := newTestServer(t)

	payload := `{"season":2026,"seasonType":2,"week":1,"picks":[{"contestId":1,"pickedParticipantId":"home-1","confidence":2}]}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/groups/1/picks", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer token-alice")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("submit picks: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body := decodeEnvelope(t, resp)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", body["data"])
	}
	if got, _ := data["pickedCount"].(float64); got != 1 {
		t.Fatalf("expected pickedCount=1, got %v", data["pickedCount"])
	}
	available, ok := data["availableConfidences"].([]any)
	if !ok || len(available) != 1 {
		t.Fatalf("expected one available confidence, got %v", data["availableConfidences"])
	}
}

func TestRouter_SubmitRejectsUnknownField(t *testing.T) {
	srv := newTestServer(t)

	payload := `{"season":2026,"seasonType":2,"week":1,"picks":[],"bogus":true}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/groups/1/picks", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer token-alice")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("submit picks: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestRouter_ScoreboardForMember(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/groups/2/scoreboard?season=2026&seasonType=2", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer token-alice")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get scoreboard: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 for member, got %d", resp.StatusCode)
	}
}

func TestRouter_ScoreboardNotAMember(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/groups/99/scoreboard", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer token-alice")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get scoreboard: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.StatusCode)
	}
}
