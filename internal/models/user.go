package models

// User is the authenticated caller's profile as returned by the login and
// profile endpoints.
type User struct {
	// ID is the backend's primary key for the user.
	ID int64 `json:"id"`

	// Username is the login name.
	Username string `json:"username"`

	// Nickname is the display name chosen at registration.
	Nickname string `json:"nickname,omitempty"`

	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// RegisterRequest is the body of the register endpoint.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Empty fields are omitted.
type ProfileUpdate struct {
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}
