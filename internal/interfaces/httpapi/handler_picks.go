package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/pickemhq/pickem-backend/internal/usecase"
)

type submitPicksRequest struct {
	Season     int               `json:"season" validate:"required,gte=2000"`
	SeasonType int               `json:"seasonType" validate:"required,gte=1,lte=3"`
	Week       int               `json:"week" validate:"gte=0,lte=22"`
	Picks      []submitPickEntry `json:"picks" validate:"required,min=1,max=16,dive"`
}

type submitPickEntry struct {
	ContestID           int64   `json:"contestId" validate:"required,gt=0"`
	PickedParticipantID *string `json:"pickedParticipantId"`
	Confidence          *int    `json:"confidence"`
}

type clearPicksRequest struct {
	Season     int `json:"season" validate:"required,gte=2000"`
	SeasonType int `json:"seasonType" validate:"required,gte=1,lte=3"`
	Week       int `json:"week" validate:"gte=0,lte=22"`
}

type pickDTO struct {
	ContestID           int64   `json:"contestId"`
	PickedParticipantID *string `json:"pickedParticipantId"`
	Confidence          *int    `json:"confidence"`
	Won                 *bool   `json:"won"`
	Points              *int    `json:"points"`
}

type weekContestDTO struct {
	Contest    contestDTO `json:"contest"`
	Pick       *pickDTO   `json:"pick,omitempty"`
	Locked     bool       `json:"locked"`
	CanEdit    bool       `json:"canEdit"`
	InProgress bool       `json:"inProgress"`
	Final      bool       `json:"final"`
}

type weekViewDTO struct {
	Season               int              `json:"season"`
	SeasonType           int              `json:"seasonType"`
	Week                 int              `json:"week"`
	Contests             []weekContestDTO `json:"contests"`
	AvailableConfidences []int            `json:"availableConfidences"`
	TotalContests        int              `json:"totalContests"`
	PickedCount          int              `json:"pickedCount"`
	WeekPoints           int              `json:"weekPoints"`
}

type scoreboardRowDTO struct {
	UserID       string      `json:"userId"`
	Name         string      `json:"name"`
	PictureURL   string      `json:"pictureUrl,omitempty"`
	TotalPoints  int         `json:"totalPoints"`
	CorrectPicks int         `json:"correctPicks"`
	WeekPoints   map[int]int `json:"weekPoints"`
}

func (h *Handler) GetWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeekPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID, err := pathGroupID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, seasonType, week, err := h.weekParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.pickService.GetWeekView(ctx, principal.ID, groupID, season, seasonType, week, queryFlag(r, "refresh"))
	if err != nil {
		h.logger.WarnContext(ctx, "get week picks failed",
			"group_id", groupID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekViewToDTO(view))
}

func (h *Handler) SubmitWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitWeekPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID, err := pathGroupID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPicksRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	inputs := make([]usecase.PickInput, 0, len(req.Picks))
	for _, entry := range req.Picks {
		inputs = append(inputs, usecase.PickInput{
			ContestID:           entry.ContestID,
			PickedParticipantID: entry.PickedParticipantID,
			Confidence:          entry.Confidence,
		})
	}

	view, err := h.pickService.SubmitPicks(ctx, principal.ID, groupID, req.Season, req.SeasonType, req.Week, inputs)
	if err != nil {
		h.logger.WarnContext(ctx, "submit picks failed",
			"group_id", groupID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekViewToDTO(view))
}

func (h *Handler) ClearWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearWeekPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID, err := pathGroupID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req clearPicksRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	cleared, err := h.pickService.ClearWeek(ctx, principal.ID, groupID, req.Season, req.SeasonType, req.Week)
	if err != nil {
		h.logger.WarnContext(ctx, "clear week picks failed",
			"group_id", groupID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"cleared": cleared})
}

func (h *Handler) GetClosestWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetClosestWeek")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	season, err := queryInt(r, "season", usecase.CurrentSeason(h.now()))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	seasonType, err := queryInt(r, "seasonType", usecase.SeasonTypeRegular)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	week, err := h.contestService.ClosestWeek(ctx, season, seasonType)
	if err != nil {
		h.logger.WarnContext(ctx, "get closest week failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{
		"season":     season,
		"seasonType": seasonType,
		"week":       week,
	})
}

func (h *Handler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScoreboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID, err := pathGroupID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := queryInt(r, "season", usecase.CurrentSeason(h.now()))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	seasonType, err := queryInt(r, "seasonType", usecase.SeasonTypeRegular)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.scoringService.Scoreboard(ctx, principal.ID, groupID, season, seasonType)
	if err != nil {
		h.logger.WarnContext(ctx, "get scoreboard failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]scoreboardRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, scoreboardRowDTO{
			UserID:       row.UserID,
			Name:         row.Name,
			PictureURL:   row.PictureURL,
			TotalPoints:  row.TotalPoints,
			CorrectPicks: row.CorrectPicks,
			WeekPoints:   row.WeekPoints,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func weekViewToDTO(view *usecase.WeekView) weekViewDTO {
	contests := make([]weekContestDTO, 0, len(view.Contests))
	for _, entry := range view.Contests {
		item := weekContestDTO{
			Contest:    contestToDTO(entry.Contest),
			Locked:     entry.Meta.Locked,
			CanEdit:    entry.Meta.CanEdit,
			InProgress: entry.Meta.InProgress,
			Final:      entry.Meta.Final,
		}
		if entry.Pick != nil {
			item.Pick = &pickDTO{
				ContestID:           entry.Pick.ContestID,
				PickedParticipantID: entry.Pick.PickedParticipantID,
				Confidence:          entry.Pick.Confidence,
				Won:                 entry.Pick.Won,
				Points:              entry.Pick.Points,
			}
		}
		contests = append(contests, item)
	}

	available := view.AvailableConfidences
	if available == nil {
		available = []int{}
	}

	return weekViewDTO{
		Season:               view.Season,
		SeasonType:           view.SeasonType,
		Week:                 view.Week,
		Contests:             contests,
		AvailableConfidences: available,
		TotalContests:        view.TotalContests,
		PickedCount:          view.PickedCount,
		WeekPoints:           view.WeekPoints,
	}
}
