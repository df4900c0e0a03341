package pg

import (
	"context"
	"database/sql"

	"reviewarena/internal/domain/challenge"
)

type ChallengeRepository struct {
	db *sql.DB
}

func NewChallengeRepository(db *sql.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func (r *ChallengeRepository) Create(ctx context.Context, c challenge.Challenge) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO challenges (id, name, description, team_name, challenge_type, goal,
		                         start_date, end_date, reward, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.Name, c.Description, c.TeamName, string(c.Type), c.Goal,
		c.StartDate, c.EndDate, c.Reward, c.IsActive, c.CreatedAt,
	)
	return wrapDBError(err, "Create")
}

func (r *ChallengeRepository) List(ctx context.Context) ([]challenge.Challenge, error) {
	rows, err := query(ctx, r.db,
		`SELECT id, name, description, team_name, challenge_type, goal,
		        start_date, end_date, reward, is_active, created_at
		   FROM challenges
		  ORDER BY start_date, name`,
	)
	if err != nil {
		return nil, wrapDBError(err, "List")
	}
	defer rows.Close()

	var out []challenge.Challenge
	for rows.Next() {
		var (
			c   challenge.Challenge
			typ string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.TeamName, &typ, &c.Goal,
			&c.StartDate, &c.EndDate, &c.Reward, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, wrapDBError(err, "List: scan")
		}
		c.Type = challenge.Type(typ)
		out = append(out, c)
	}
	return out, wrapDBError(rows.Err(), "List")
}
