package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pickemhq/pickem-backend/internal/domain/contest"
	"github.com/pickemhq/pickem-backend/internal/usecase"
)

type Handler struct {
	contestService *usecase.ContestService
	pickService    *usecase.PickService
	scoringService *usecase.ScoringService
	logger         *slog.Logger
	validator      *validator.Validate
	now            func() time.Time
}

func NewHandler(
	contestService *usecase.ContestService,
	pickService *usecase.PickService,
	scoringService *usecase.ScoringService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		contestService: contestService,
		pickService:    pickService,
		scoringService: scoringService,
		logger:         logger,
		validator:      validator.New(),
		now:            time.Now,
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListContests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListContests")
	defer span.End()

	season, seasonType, week, err := h.weekParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	forceRefresh := queryFlag(r, "refresh")

	contests, err := h.contestService.GetContests(ctx, season, seasonType, week, forceRefresh)
	if err != nil {
		h.logger.WarnContext(ctx, "list contests failed",
			"season", season, "season_type", seasonType, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]contestDTO, 0, len(contests))
	for _, c := range contests {
		items = append(items, contestToDTO(c))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// weekParams reads season/seasonType/week from the query string, defaulting
// season to the running one and week to 1.
func (h *Handler) weekParams(r *http.Request) (season, seasonType, week int, err error) {
	season, err = queryInt(r, "season", usecase.CurrentSeason(h.now()))
	if err != nil {
		return 0, 0, 0, err
	}
	seasonType, err = queryInt(r, "seasonType", usecase.SeasonTypeRegular)
	if err != nil {
		return 0, 0, 0, err
	}
	week, err = queryInt(r, "week", 1)
	if err != nil {
		return 0, 0, 0, err
	}
	return season, seasonType, week, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return parsed, nil
}

func queryFlag(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func pathGroupID(r *http.Request) (int64, error) {
	raw := r.PathValue("groupID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid group id %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

type participantDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type contestDTO struct {
	ID           int64          `json:"id"`
	ExternalID   string         `json:"externalId"`
	Home         participantDTO `json:"home"`
	Away         participantDTO `json:"away"`
	ScheduledAt  time.Time      `json:"scheduledAt"`
	Status       string         `json:"status"`
	HomeScore    int            `json:"homeScore"`
	AwayScore    int            `json:"awayScore"`
	Period       int            `json:"period,omitempty"`
	DisplayClock string         `json:"displayClock,omitempty"`
	StatusDetail string         `json:"statusDetail,omitempty"`
	Week         int            `json:"week"`
	Season       int            `json:"season"`
	SeasonType   int            `json:"seasonType"`
}

func contestToDTO(c contest.Contest) contestDTO {
	return contestDTO{
		ID:         c.ID,
		ExternalID: c.ExternalID,
		Home: participantDTO{
			ID:           c.HomeParticipant.ID,
			Name:         c.HomeParticipant.Name,
			Abbreviation: c.HomeParticipant.Abbreviation,
		},
		Away: participantDTO{
			ID:           c.AwayParticipant.ID,
			Name:         c.AwayParticipant.Name,
			Abbreviation: c.AwayParticipant.Abbreviation,
		},
		ScheduledAt:  c.ScheduledAt,
		Status:       string(c.Status),
		HomeScore:    c.HomeScore,
		AwayScore:    c.AwayScore,
		Period:       c.Period,
		DisplayClock: c.DisplayClock,
		StatusDetail: c.StatusDetail,
		Week:         c.Week,
		Season:       c.Season,
		SeasonType:   c.SeasonType,
	}
}
