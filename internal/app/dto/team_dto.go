package dto

type TeamMember struct {
	UserID   int64  `json:"user_id"`
	Login    string `json:"login"`
	IsActive bool   `json:"is_active"`
}

type Team struct {
	TeamName string       `json:"team_name"`
	Members  []TeamMember `json:"members"`
}

type User struct {
	UserID    int64  `json:"user_id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsActive  bool   `json:"is_active"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}
