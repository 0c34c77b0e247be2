package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicContestRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/contests", handler.ListContests)
}

func registerAuthorizedGroupRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/groups/{groupID}/picks", RequireAuth(verifier, http.HandlerFunc(handler.GetWeekPicks)))
	mux.Handle("POST /v1/groups/{groupID}/picks", RequireAuth(verifier, http.HandlerFunc(handler.SubmitWeekPicks)))
	mux.Handle("POST /v1/groups/{groupID}/picks/clear", RequireAuth(verifier, http.HandlerFunc(handler.ClearWeekPicks)))
	mux.Handle("GET /v1/groups/{groupID}/picks/closest", RequireAuth(verifier, http.HandlerFunc(handler.GetClosestWeek)))
	mux.Handle("GET /v1/groups/{groupID}/scoreboard", RequireAuth(verifier, http.HandlerFunc(handler.GetScoreboard)))
}
