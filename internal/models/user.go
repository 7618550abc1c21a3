// internal/models/user.go
package models

// User is the identity record returned by the user service.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Credentials is the payload for auth login and register.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// LoginResult is the auth service's login response.
type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"userId,omitempty"`
}

// Profile is the per-user profile blob persisted locally.
type Profile struct {
	Bio         string   `json:"bio"`
	Nationality string   `json:"nationality"`
	Interests   []string `json:"interests"`
}
