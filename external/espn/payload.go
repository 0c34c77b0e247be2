package espn

// Wire shapes for the site API scoreboard feed. Only the fields the mapper
// reads are declared.

type scoreboardEnvelope struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string             `json:"id"`
	Date         string             `json:"date"`
	Competitions []eventCompetition `json:"competitions"`
}

type eventCompetition struct {
	Date        string            `json:"date"`
	Competitors []eventCompetitor `json:"competitors"`
	Status      eventStatus       `json:"status"`
}

type eventCompetitor struct {
	HomeAway string    `json:"homeAway"`
	Score    string    `json:"score"`
	Team     eventTeam `json:"team"`
}

type eventTeam struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Abbreviation string `json:"abbreviation"`
}

type eventStatus struct {
	Period       int             `json:"period"`
	DisplayClock string          `json:"displayClock"`
	Type         eventStatusType `json:"type"`
}

type eventStatusType struct {
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	ShortDetail string `json:"shortDetail"`
}
