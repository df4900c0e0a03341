package dto

import "time"

type CreateChallengeRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TeamName    string    `json:"team_name"`
	Type        string    `json:"type"`
	Goal        float64   `json:"goal"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Reward      string    `json:"reward"`
}

type ChallengeProgress struct {
	Current float64 `json:"current"`
	Goal    float64 `json:"goal"`
	Percent float64 `json:"percent"`
	Met     bool    `json:"met"`
}

type Challenge struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	TeamName    string             `json:"team_name"`
	Type        string             `json:"type"`
	Goal        float64            `json:"goal"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	Reward      string             `json:"reward,omitempty"`
	IsActive    bool               `json:"is_active"`
	CreatedAt   time.Time          `json:"created_at"`
	Phase       string             `json:"phase,omitempty"`
	Progress    *ChallengeProgress `json:"progress,omitempty"`
}

type ChallengeBoard struct {
	Active    []Challenge `json:"active"`
	Upcoming  []Challenge `json:"upcoming"`
	Completed []Challenge `json:"completed"`
}
