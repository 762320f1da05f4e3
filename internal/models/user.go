package models

// User is the identity of the currently authenticated user as returned by
// the server.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
