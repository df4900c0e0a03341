package member

import "time"

// User is a GitHub account that belongs to the tracked organization.
type User struct {
	ID           int64
	Login        string
	Name         string
	AvatarURL    string
	HTMLURL      string
	Email        string
	Organization string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName falls back to the login when GitHub has no profile name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}
