package group

// Group is the pool a set of users share picks within. Administration of
// groups (creation, invites) lives outside this service.
type Group struct {
	ID   int64
	Name string
}

// Member is a user belonging to a group.
type Member struct {
	UserID     string
	Name       string
	PictureURL string
}
