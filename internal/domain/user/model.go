package user

// Principal is the authenticated caller as established by token
// introspection.
type Principal struct {
	ID         string
	Name       string
	Email      string
	PictureURL string
}
