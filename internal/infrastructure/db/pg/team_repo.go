package pg

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/team"
)

type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := queryRow(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM teams WHERE team_name = $1)`,
		name,
	).Scan(&exists)
	return exists, wrapDBError(err, "Exists")
}

func (r *TeamRepository) Create(ctx context.Context, name string) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO teams (team_name) VALUES ($1)`,
		name,
	)
	if isUniqueViolation(err) {
		return &domain.DomainError{
			Code:       domain.ErrorCodeTeamExists,
			Message:    "team_name already exists",
			HTTPStatus: http.StatusBadRequest,
		}
	}
	return wrapDBError(err, "Create")
}

func (r *TeamRepository) AddMembers(ctx context.Context, name string, userIDs []int64) error {
	for _, id := range userIDs {
		if _, err := exec(ctx, r.db,
			`INSERT INTO team_members (team_name, user_id)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			name, id,
		); err != nil {
			return wrapDBError(err, "AddMembers")
		}
	}
	return nil
}

func (r *TeamRepository) GetWithMembers(ctx context.Context, name string) (team.Team, error) {
	var t team.Team
	err := queryRow(ctx, r.db,
		`SELECT team_name FROM teams WHERE team_name = $1`,
		name,
	).Scan(&t.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return team.Team{}, domain.NotFound("team not found")
	}
	if err != nil {
		return team.Team{}, wrapDBError(err, "GetWithMembers")
	}

	// members that left the organization keep their row, flagged inactive
	rows, err := query(ctx, r.db,
		`SELECT tm.user_id, COALESCE(u.login, ''), COALESCE(u.is_active, FALSE)
		   FROM team_members tm
		   LEFT JOIN github_users u ON u.id = tm.user_id
		  WHERE tm.team_name = $1
		  ORDER BY tm.user_id`,
		name,
	)
	if err != nil {
		return team.Team{}, wrapDBError(err, "GetWithMembers: members")
	}
	defer rows.Close()

	for rows.Next() {
		var m team.Member
		if err := rows.Scan(&m.UserID, &m.Login, &m.Active); err != nil {
			return team.Team{}, wrapDBError(err, "GetWithMembers: scan")
		}
		t.Members = append(t.Members, m)
	}
	if err := rows.Err(); err != nil {
		return team.Team{}, wrapDBError(err, "GetWithMembers")
	}
	return t, nil
}
